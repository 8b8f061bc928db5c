package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// MaxFramesInFlight bounds how many frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

// frameSync is the state owned by one in-flight slot. The CPU touches cmd and
// the uniform mapping only after in_flight has been observed signaled.
type frameSync struct {
	image_available vk.Semaphore
	render_finished vk.Semaphore
	in_flight       vk.Fence
	cmd             vk.CommandBuffer
	uniform         *CoreBuffer
	uniform_data    []byte
}

// newFrames creates count slots. Fences start signaled so the first wait returns immediately.
func newFrames(dev *CoreDevice, pool *CorePool, count int) (frames []*frameSync, err error) {
	defer func() {
		if err != nil {
			destroyFrames(dev.handle, frames)
			frames = nil
		}
	}()

	cmds, err := pool.Allocate(count)
	if err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		f := &frameSync{cmd: cmds[i]}
		frames = append(frames, f)

		ret := vk.CreateFence(dev.handle, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &f.in_flight)
		if isError(ret) {
			return frames, errors.Wrap(NewError(ret), "create fence")
		}
		for _, sem := range []*vk.Semaphore{&f.image_available, &f.render_finished} {
			ret = vk.CreateSemaphore(dev.handle, &vk.SemaphoreCreateInfo{
				SType: vk.StructureTypeSemaphoreCreateInfo,
			}, nil, sem)
			if isError(ret) {
				return frames, errors.Wrap(NewError(ret), "create semaphore")
			}
		}

		f.uniform, err = newHostBuffer(dev, transformSize, vk.BufferUsageUniformBufferBit)
		if err != nil {
			return frames, errors.Wrap(err, "uniform buffer")
		}
		if f.uniform_data, err = f.uniform.Map(); err != nil {
			return frames, err
		}
	}
	return frames, nil
}

func destroyFrames(device vk.Device, frames []*frameSync) {
	for _, f := range frames {
		vk.DestroySemaphore(device, f.image_available, nil)
		vk.DestroySemaphore(device, f.render_finished, nil)
		vk.DestroyFence(device, f.in_flight, nil)
		f.uniform.Destroy()
	}
}

// frameSubmitInfo waits on wait at color attachment output and signals signal when cmd completes.
func frameSubmitInfo(cmd vk.CommandBuffer, wait, signal vk.Semaphore) vk.SubmitInfo {
	return vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal},
	}
}

func framePresentInfo(swapchain vk.Swapchain, image uint32, wait vk.Semaphore) vk.PresentInfo {
	return vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain},
		PImageIndices:      []uint32{image},
	}
}
