package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CoreImage is a device image with its memory, view and tracked layout.
type CoreImage struct {
	device vk.Device
	image  vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	format vk.Format
	extent vk.Extent2D
	layout vk.ImageLayout
}

// newImage creates an optimal-tiling 2D image in Undefined layout backed by memory with props.
func newImage(dev *CoreDevice, extent vk.Extent2D, format vk.Format, usage vk.ImageUsageFlagBits, props vk.MemoryPropertyFlagBits) (*CoreImage, error) {
	img := &CoreImage{
		device: dev.handle,
		format: format,
		extent: extent,
		layout: vk.ImageLayoutUndefined,
	}
	ret := vk.CreateImage(dev.handle, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img.image)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create image")
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev.handle, img.image, &reqs)
	reqs.Deref()

	memory, err := allocate(dev.handle, dev.memory_properties, reqs, vk.MemoryPropertyFlags(props))
	if err != nil {
		vk.DestroyImage(dev.handle, img.image, nil)
		return nil, errors.Wrap(err, "image memory")
	}
	img.memory = memory
	if ret := vk.BindImageMemory(dev.handle, img.image, memory, 0); isError(ret) {
		img.Destroy()
		return nil, errors.Wrap(NewError(ret), "bind image memory")
	}
	return img, nil
}

// createImageView builds a 2D view covering the single mip level and layer.
func createImageView(device vk.Device, image vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if isError(ret) {
		return vk.NullImageView, errors.Wrap(NewError(ret), "create image view")
	}
	return view, nil
}

func (img *CoreImage) CreateView(aspect vk.ImageAspectFlags) error {
	view, err := createImageView(img.device, img.image, img.format, aspect)
	if err != nil {
		return err
	}
	img.view = view
	return nil
}

func (img *CoreImage) Layout() vk.ImageLayout { return img.layout }
func (img *CoreImage) View() vk.ImageView     { return img.view }
func (img *CoreImage) Format() vk.Format      { return img.format }

// planTransition validates old_layout against the tracked layout and builds the barrier.
func (img *CoreImage) planTransition(old_layout, new_layout vk.ImageLayout) (vk.ImageMemoryBarrier, transitionMasks, error) {
	if old_layout != img.layout {
		return vk.ImageMemoryBarrier{}, transitionMasks{}, errors.Wrapf(ErrLayoutMismatch, "have %d, requested %d", img.layout, old_layout)
	}
	return transitionBarrier(img.image, img.format, old_layout, new_layout)
}

// Transition records a layout barrier into cmd and updates the tracked layout.
func (img *CoreImage) Transition(cmd vk.CommandBuffer, old_layout, new_layout vk.ImageLayout) error {
	barrier, masks, err := img.planTransition(old_layout, new_layout)
	if err != nil {
		return err
	}
	cmdTransition(cmd, barrier, masks)
	img.layout = new_layout
	return nil
}

func (img *CoreImage) Destroy() {
	if img == nil || img.device == nil {
		return
	}
	if img.view != vk.NullImageView {
		vk.DestroyImageView(img.device, img.view, nil)
	}
	vk.DestroyImage(img.device, img.image, nil)
	vk.FreeMemory(img.device, img.memory, nil)
	img.device = nil
}
