package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var preferredSurfaceFormat = vk.SurfaceFormat{
	Format:     vk.FormatB8g8r8a8Srgb,
	ColorSpace: vk.ColorSpaceSrgbNonlinear,
}

// depthFormats are probed in order for depth-stencil attachment support.
var depthFormats = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

// chooseSurfaceFormat prefers B8G8R8A8_SRGB with a nonlinear sRGB color space
// and otherwise takes the first format offered.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == preferredSurfaceFormat.Format && f.ColorSpace == preferredSurfaceFormat.ColorSpace {
			return f
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox; FIFO is always available.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// chooseExtent clamps the framebuffer size to the surface extent bounds.
func chooseExtent(caps vk.SurfaceCapabilities, width, height int) vk.Extent2D {
	return vk.Extent2D{
		Width:  clamp(uint32(width), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(uint32(height), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image over the minimum, bounded by a nonzero maximum.
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func chooseCompositeAlpha(caps vk.SurfaceCapabilities) vk.CompositeAlphaFlagBits {
	for _, flag := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(flag) != 0 {
			return flag
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

// swapchainPlan is everything needed to create a swapchain, derived without touching the device.
type swapchainPlan struct {
	format          vk.SurfaceFormat
	present_mode    vk.PresentMode
	extent          vk.Extent2D
	image_count     uint32
	pre_transform   vk.SurfaceTransformFlagBits
	composite_alpha vk.CompositeAlphaFlagBits
}

func planSwapchain(caps vk.SurfaceCapabilities, formats []vk.SurfaceFormat, modes []vk.PresentMode, width, height int) (swapchainPlan, error) {
	if len(formats) == 0 {
		return swapchainPlan{}, errors.New("surface reports no formats")
	}
	return swapchainPlan{
		format:          chooseSurfaceFormat(formats),
		present_mode:    choosePresentMode(modes),
		extent:          chooseExtent(caps, width, height),
		image_count:     chooseImageCount(caps),
		pre_transform:   caps.CurrentTransform,
		composite_alpha: chooseCompositeAlpha(caps),
	}, nil
}

// chooseDepthFormat returns the first depth format whose optimal tiling features
// include depth-stencil attachment.
func chooseDepthFormat(features func(vk.Format) vk.FormatFeatureFlags) (vk.Format, error) {
	want := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, format := range depthFormats {
		if features(format)&want == want {
			return format, nil
		}
	}
	return vk.FormatUndefined, ErrNoDepthFormat
}

// surfaceSupport queries and dereferences the surface state of the device.
func surfaceSupport(dev *CoreDevice) (vk.SurfaceCapabilities, []vk.SurfaceFormat, []vk.PresentMode, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(dev.gpu, dev.surface, &caps)
	if isError(ret) {
		return caps, nil, nil, errors.Wrap(NewError(ret), "surface capabilities")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(dev.gpu, dev.surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(dev.gpu, dev.surface, &formatCount, formats)
	for i := range formats {
		formats[i].Deref()
	}

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(dev.gpu, dev.surface, &modeCount, nil)
	modes := make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(dev.gpu, dev.surface, &modeCount, modes)
	return caps, formats, modes, nil
}

// CoreSwapchain owns the presentable images, their views, the depth image and
// the framebuffers. All four are destroyed and recreated together.
type CoreSwapchain struct {
	dev          *CoreDevice
	display      Display
	uploader     *Uploader
	swapchain    vk.Swapchain
	format       vk.SurfaceFormat
	present_mode vk.PresentMode
	extent       vk.Extent2D
	images       []vk.Image
	image_views  []vk.ImageView
	depth_format vk.Format
	depth        *CoreImage
	framebuffers []vk.Framebuffer
}

// NewCoreSwapchain creates the swapchain, its views and depth image. Framebuffers
// follow once the render pass exists, see CreateFramebuffers.
func NewCoreSwapchain(dev *CoreDevice, display Display, uploader *Uploader) (*CoreSwapchain, error) {
	depth_format, err := chooseDepthFormat(dev.FormatFeatures)
	if err != nil {
		return nil, err
	}
	core := &CoreSwapchain{
		dev:          dev,
		display:      display,
		uploader:     uploader,
		depth_format: depth_format,
	}
	if err := core.create(); err != nil {
		core.destroy()
		return nil, err
	}
	return core, nil
}

func (core *CoreSwapchain) create() error {
	caps, formats, modes, err := surfaceSupport(core.dev)
	if err != nil {
		return err
	}
	width, height := core.display.FramebufferSize()
	plan, err := planSwapchain(caps, formats, modes, width, height)
	if err != nil {
		return err
	}
	if core.format.Format != vk.FormatUndefined && plan.format.Format != core.format.Format {
		core.dev.log.Warnf("surface format changed from %d to %d", core.format.Format, plan.format.Format)
	}

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          core.dev.surface,
		MinImageCount:    plan.image_count,
		ImageFormat:      plan.format.Format,
		ImageColorSpace:  plan.format.ColorSpace,
		ImageExtent:      plan.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     plan.pre_transform,
		CompositeAlpha:   plan.composite_alpha,
		PresentMode:      plan.present_mode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if !core.dev.families.shared() {
		families := core.dev.families.unique()
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = uint32(len(families))
		info.PQueueFamilyIndices = families
	}

	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(core.dev.handle, &info, nil, &swapchain)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "create swapchain")
	}
	core.swapchain = swapchain
	core.format = plan.format
	core.present_mode = plan.present_mode
	core.extent = plan.extent

	var imageCount uint32
	vk.GetSwapchainImages(core.dev.handle, core.swapchain, &imageCount, nil)
	core.images = make([]vk.Image, imageCount)
	ret = vk.GetSwapchainImages(core.dev.handle, core.swapchain, &imageCount, core.images)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "get swapchain images")
	}

	core.image_views = make([]vk.ImageView, 0, imageCount)
	for _, image := range core.images {
		view, err := createImageView(core.dev.handle, image, core.format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}
		core.image_views = append(core.image_views, view)
	}

	if err := core.createDepth(); err != nil {
		return err
	}
	core.dev.log.Debugf("swapchain %dx%d, %d images, present mode %d",
		core.extent.Width, core.extent.Height, len(core.images), core.present_mode)
	return nil
}

// createDepth builds the depth image for the current extent and moves it
// straight into its attachment layout; the render pass clears it on load.
func (core *CoreSwapchain) createDepth() error {
	depth, err := newImage(core.dev, core.extent, core.depth_format,
		vk.ImageUsageDepthStencilAttachmentBit, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return errors.Wrap(err, "depth image")
	}
	core.depth = depth
	if err := depth.CreateView(vk.ImageAspectFlags(vk.ImageAspectDepthBit)); err != nil {
		return err
	}
	return core.uploader.TransitionImage(depth, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
}

// CreateFramebuffers pairs every color view with the shared depth view.
func (core *CoreSwapchain) CreateFramebuffers(renderPass vk.RenderPass) error {
	core.framebuffers = make([]vk.Framebuffer, 0, len(core.image_views))
	for _, view := range core.image_views {
		attachments := []vk.ImageView{view, core.depth.View()}
		var framebuffer vk.Framebuffer
		ret := vk.CreateFramebuffer(core.dev.handle, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           core.extent.Width,
			Height:          core.extent.Height,
			Layers:          1,
		}, nil, &framebuffer)
		if isError(ret) {
			return errors.Wrap(NewError(ret), "create framebuffer")
		}
		core.framebuffers = append(core.framebuffers, framebuffer)
	}
	return nil
}

// Rebuild waits for a drawable window and an idle device, tears down the
// swapchain unit and creates it again at the current framebuffer size.
func (core *CoreSwapchain) Rebuild(renderPass vk.RenderPass) error {
	width, height := core.display.FramebufferSize()
	for width == 0 || height == 0 {
		core.display.WaitEvents()
		width, height = core.display.FramebufferSize()
	}
	if err := core.dev.WaitIdle(); err != nil {
		return err
	}
	core.destroy()
	if err := core.create(); err != nil {
		return errors.Wrap(err, "rebuild swapchain")
	}
	return core.CreateFramebuffers(renderPass)
}

// destroy releases framebuffers, views, the swapchain and the depth image, in that order.
func (core *CoreSwapchain) destroy() {
	device := core.dev.handle
	for _, fb := range core.framebuffers {
		vk.DestroyFramebuffer(device, fb, nil)
	}
	core.framebuffers = nil
	for _, view := range core.image_views {
		vk.DestroyImageView(device, view, nil)
	}
	core.image_views = nil
	if core.swapchain != vk.NullSwapchain {
		vk.DestroySwapchain(device, core.swapchain, nil)
		core.swapchain = vk.NullSwapchain
	}
	core.images = nil
	core.depth.Destroy()
	core.depth = nil
}

func (core *CoreSwapchain) Destroy() {
	core.destroy()
}

func (core *CoreSwapchain) Extent() vk.Extent2D      { return core.extent }
func (core *CoreSwapchain) Format() vk.SurfaceFormat { return core.format }
func (core *CoreSwapchain) DepthFormat() vk.Format   { return core.depth_format }
func (core *CoreSwapchain) ImageCount() int          { return len(core.images) }
func (core *CoreSwapchain) Handle() vk.Swapchain     { return core.swapchain }
func (core *CoreSwapchain) Framebuffer(image uint32) vk.Framebuffer {
	return core.framebuffers[image]
}
