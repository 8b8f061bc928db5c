package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Uploader moves CPU data into device-local resources through staging buffers.
// Every command it records is submitted and waited on before it returns.
type Uploader struct {
	dev  *CoreDevice
	pool *CorePool
}

func NewUploader(dev *CoreDevice, pool *CorePool) *Uploader {
	return &Uploader{dev: dev, pool: pool}
}

// OneShot records a single-use command buffer with record, submits it to the
// graphics queue and blocks until the queue is idle.
func (u *Uploader) OneShot(record func(cmd vk.CommandBuffer) error) (err error) {
	cmds, err := u.pool.Allocate(1)
	if err != nil {
		return err
	}
	defer u.pool.Free(cmds)
	cmd := cmds[0]

	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		return errors.Wrap(NewError(ret), "begin one-shot command buffer")
	}
	if err := record(cmd); err != nil {
		vk.EndCommandBuffer(cmd)
		return err
	}
	if ret := vk.EndCommandBuffer(cmd); isError(ret) {
		return errors.Wrap(NewError(ret), "end one-shot command buffer")
	}

	ret = vk.QueueSubmit(u.dev.graphics_queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cmds,
	}}, vk.NullFence)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "submit one-shot command buffer")
	}
	if ret := vk.QueueWaitIdle(u.dev.graphics_queue); isError(ret) {
		return errors.Wrap(NewError(ret), "wait for one-shot command buffer")
	}
	return nil
}

func (u *Uploader) staging(data []byte) (*CoreBuffer, error) {
	staging, err := newHostBuffer(u.dev, len(data), vk.BufferUsageTransferSrcBit)
	if err != nil {
		return nil, errors.Wrap(err, "staging buffer")
	}
	if err := staging.Write(data); err != nil {
		staging.Destroy()
		return nil, err
	}
	return staging, nil
}

// UploadBuffer copies data into a new device-local buffer usable as usage.
func (u *Uploader) UploadBuffer(data []byte, usage vk.BufferUsageFlagBits) (*CoreBuffer, error) {
	if len(data) == 0 {
		return nil, errors.New("upload of empty buffer")
	}
	staging, err := u.staging(data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	dst, err := newBuffer(u.dev, len(data), vk.BufferUsageTransferDstBit|usage, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}
	err = u.OneShot(func(cmd vk.CommandBuffer) error {
		vk.CmdCopyBuffer(cmd, staging.buffer, dst.buffer, 1, []vk.BufferCopy{{
			Size: vk.DeviceSize(len(data)),
		}})
		return nil
	})
	if err != nil {
		dst.Destroy()
		return nil, err
	}
	return dst, nil
}

// UploadTexture creates a sampled sRGB image from tightly packed RGBA8 pixels
// and leaves it in ShaderReadOnlyOptimal layout.
func (u *Uploader) UploadTexture(pixels []byte, width, height uint32) (*CoreImage, error) {
	if err := checkTextureSize(len(pixels), width, height); err != nil {
		return nil, err
	}
	staging, err := u.staging(pixels)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	img, err := newImage(u.dev, vk.Extent2D{Width: width, Height: height}, vk.FormatR8g8b8a8Srgb,
		vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, errors.Wrap(err, "texture image")
	}
	err = u.OneShot(func(cmd vk.CommandBuffer) error {
		if err := img.Transition(cmd, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
			return err
		}
		vk.CmdCopyBufferToImage(cmd, staging.buffer, img.image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
		}})
		return img.Transition(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		img.Destroy()
		return nil, err
	}
	if err := img.CreateView(vk.ImageAspectFlags(vk.ImageAspectColorBit)); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

// TransitionImage runs a single layout change on its own command buffer.
func (u *Uploader) TransitionImage(img *CoreImage, old_layout, new_layout vk.ImageLayout) error {
	return u.OneShot(func(cmd vk.CommandBuffer) error {
		return img.Transition(cmd, old_layout, new_layout)
	})
}

// checkTextureSize rejects empty extents and pixel buffers that are not exactly width*height RGBA8 texels.
func checkTextureSize(n int, width, height uint32) error {
	if width == 0 || height == 0 {
		return errors.Errorf("texture %dx%d has an empty extent", width, height)
	}
	want := uint64(width) * uint64(height) * 4
	if uint64(n) != want {
		return errors.Errorf("texture %dx%d needs %d bytes, have %d", width, height, want, n)
	}
	return nil
}
