package assets

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/andewx/meshvk"
)

// LoadTexture decodes a PNG, JPEG, BMP, TIFF or WebP file into RGBA8 pixels.
// A positive maxSize bounds the longer edge; larger images are downscaled.
func LoadTexture(path string, maxSize int) (*meshvk.Texture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open texture")
	}
	defer file.Close()
	tex, err := DecodeTexture(file, maxSize)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s", path)
	}
	return tex, nil
}

func DecodeTexture(r io.Reader, maxSize int) (*meshvk.Texture, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, errors.Errorf("empty %s image", format)
	}

	w, h := fitSize(bounds.Dx(), bounds.Dy(), maxSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	}
	return &meshvk.Texture{
		Pixels: dst.Pix,
		Width:  uint32(w),
		Height: uint32(h),
	}, nil
}

// fitSize scales (w, h) down so the longer edge is at most maxSize, keeping the aspect ratio.
func fitSize(w, h, maxSize int) (int, int) {
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return w, h
	}
	if w >= h {
		return maxSize, max(1, h*maxSize/w)
	}
	return max(1, w*maxSize/h), maxSize
}
