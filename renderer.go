package meshvk

import (
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Texture is decoded RGBA8 pixel data, tightly packed.
type Texture struct {
	Pixels []byte
	Width  uint32
	Height uint32
}

// Renderer owns every GPU resource needed to draw one textured mesh.
type Renderer struct {
	log         *Logger
	display     Display
	dev         *CoreDevice
	pool        *CorePool
	uploader    *Uploader
	swapchain   *CoreSwapchain
	renderPass  *CoreRenderPass
	descriptors *CoreDescriptors
	pipeline    *CorePipeline
	vertices    *CoreBuffer
	indices     *CoreBuffer
	index_count uint32
	texture     *CoreImage
	frames      []*frameSync
	scheduler   *FrameScheduler
}

// NewRenderer brings up the device, swapchain and pipeline for display and
// uploads mesh and texture. Any failure releases what was already created.
func NewRenderer(cfg Config, display Display, mesh *Mesh, texture *Texture, log *Logger) (r *Renderer, err error) {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, errors.New("mesh has no geometry")
	}
	r = &Renderer{log: log, display: display}
	defer func() {
		if err != nil {
			r.Destroy()
			r = nil
		}
	}()

	if r.dev, err = NewCoreDevice(cfg, display, log); err != nil {
		return r, errors.Wrap(err, "device")
	}
	if r.pool, err = NewCorePool(r.dev.handle, r.dev.families.graphics); err != nil {
		return r, err
	}
	r.uploader = NewUploader(r.dev, r.pool)

	if r.swapchain, err = NewCoreSwapchain(r.dev, display, r.uploader); err != nil {
		return r, errors.Wrap(err, "swapchain")
	}
	r.renderPass, err = NewCoreRenderPass(r.dev.handle, r.swapchain.Format().Format, r.swapchain.DepthFormat())
	if err != nil {
		return r, err
	}
	if err = r.swapchain.CreateFramebuffers(r.renderPass.Handle()); err != nil {
		return r, err
	}

	if r.vertices, err = r.uploader.UploadBuffer(vertexBytes(mesh.Vertices), vk.BufferUsageVertexBufferBit); err != nil {
		return r, errors.Wrap(err, "vertex buffer")
	}
	if r.indices, err = r.uploader.UploadBuffer(indexBytes(mesh.Indices), vk.BufferUsageIndexBufferBit); err != nil {
		return r, errors.Wrap(err, "index buffer")
	}
	r.index_count = uint32(len(mesh.Indices))
	if r.texture, err = r.uploader.UploadTexture(texture.Pixels, texture.Width, texture.Height); err != nil {
		return r, errors.Wrap(err, "texture")
	}

	if r.frames, err = newFrames(r.dev, r.pool, MaxFramesInFlight); err != nil {
		return r, err
	}
	uniforms := make([]*CoreBuffer, len(r.frames))
	for i, f := range r.frames {
		uniforms[i] = f.uniform
	}
	if r.descriptors, err = NewCoreDescriptors(r.dev.handle, uniforms, r.texture); err != nil {
		return r, err
	}

	shader, err := NewCoreShader(r.dev.handle, cfg.VertexShader, cfg.FragmentShader)
	if err != nil {
		return r, err
	}
	defer shader.Destroy()
	r.pipeline, err = NewPipelineBuilder(shader).Build(r.dev.handle, r.renderPass.Handle(), r.descriptors.Layout())
	if err != nil {
		return r, err
	}

	r.scheduler = newFrameScheduler(r, log)
	log.Infof("renderer ready: %d vertices, %d indices, texture %dx%d",
		len(mesh.Vertices), len(mesh.Indices), texture.Width, texture.Height)
	return r, nil
}

// Run draws until the display closes. Resources stay valid until Destroy.
func (r *Renderer) Run() error {
	return r.scheduler.Run(r.display)
}

func (r *Renderer) Scheduler() *FrameScheduler { return r.scheduler }

func (r *Renderer) waitForFrame(slot int) error {
	ret := vk.WaitForFences(r.dev.handle, 1, []vk.Fence{r.frames[slot].in_flight}, vk.True, vk.MaxUint64)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "wait for fence")
	}
	return nil
}

func (r *Renderer) resetFrame(slot int) error {
	if ret := vk.ResetFences(r.dev.handle, 1, []vk.Fence{r.frames[slot].in_flight}); isError(ret) {
		return errors.Wrap(NewError(ret), "reset fence")
	}
	return nil
}

func (r *Renderer) updateUniforms(slot int, elapsed time.Duration) error {
	t := TransformAt(elapsed, r.swapchain.Extent())
	t.Put(r.frames[slot].uniform_data)
	return nil
}

func (r *Renderer) acquireImage(slot int) (uint32, vk.Result) {
	var image uint32
	ret := vk.AcquireNextImage(r.dev.handle, r.swapchain.Handle(), vk.MaxUint64,
		r.frames[slot].image_available, vk.NullFence, &image)
	return image, ret
}

func (r *Renderer) recordFrame(slot int, image uint32) error {
	cmd := r.frames[slot].cmd
	if ret := vk.ResetCommandBuffer(cmd, 0); isError(ret) {
		return errors.Wrap(NewError(ret), "reset command buffer")
	}
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		return errors.Wrap(NewError(ret), "begin command buffer")
	}

	extent := r.swapchain.Extent()
	area := vk.Rect2D{Extent: extent}
	clearValues := []vk.ClearValue{
		vk.NewClearValue([]float32{0.0, 0.0, 0.0, 1.0}),
		vk.NewClearDepthStencil(1.0, 0),
	}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      r.renderPass.Handle(),
		Framebuffer:     r.swapchain.Framebuffer(image),
		RenderArea:      area,
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, r.pipeline.Handle())
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{area})

	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{r.vertices.buffer}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cmd, r.indices.buffer, 0, vk.IndexTypeUint32)
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, r.pipeline.Layout(), 0, 1,
		[]vk.DescriptorSet{r.descriptors.Set(slot)}, 0, nil)
	vk.CmdDrawIndexed(cmd, r.index_count, 1, 0, 0, 0)

	vk.CmdEndRenderPass(cmd)
	if ret := vk.EndCommandBuffer(cmd); isError(ret) {
		return errors.Wrap(NewError(ret), "end command buffer")
	}
	return nil
}

func (r *Renderer) submitFrame(slot int) error {
	f := r.frames[slot]
	info := frameSubmitInfo(f.cmd, f.image_available, f.render_finished)
	if ret := vk.QueueSubmit(r.dev.graphics_queue, 1, []vk.SubmitInfo{info}, f.in_flight); isError(ret) {
		return errors.Wrap(NewError(ret), "queue submit")
	}
	return nil
}

func (r *Renderer) presentFrame(slot int, image uint32) vk.Result {
	info := framePresentInfo(r.swapchain.Handle(), image, r.frames[slot].render_finished)
	return vk.QueuePresent(r.dev.present_queue, &info)
}

func (r *Renderer) rebuildSwapchain() error {
	return r.swapchain.Rebuild(r.renderPass.Handle())
}

func (r *Renderer) waitIdle() error {
	return r.dev.WaitIdle()
}

// Destroy waits for the device and releases everything in reverse creation order.
func (r *Renderer) Destroy() {
	if r == nil || r.dev == nil {
		return
	}
	if r.dev.handle != nil {
		if err := r.dev.WaitIdle(); err != nil {
			r.log.Errorf("destroy: %v", err)
		}
		r.pipeline.Destroy()
		r.descriptors.Destroy()
		destroyFrames(r.dev.handle, r.frames)
		r.frames = nil
		r.texture.Destroy()
		r.indices.Destroy()
		r.vertices.Destroy()
		if r.swapchain != nil {
			r.swapchain.Destroy()
		}
		r.renderPass.Destroy()
		r.pool.Destroy()
	}
	r.dev.Destroy()
	r.dev = nil
}
