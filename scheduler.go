package meshvk

import (
	"time"

	"github.com/loov/hrtime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// frameDevice is the GPU side of a frame, addressed by in-flight slot.
type frameDevice interface {
	// waitForFrame blocks until the slot's fence is signaled.
	waitForFrame(slot int) error
	// resetFrame unsignals the slot's fence.
	resetFrame(slot int) error
	updateUniforms(slot int, elapsed time.Duration) error
	acquireImage(slot int) (uint32, vk.Result)
	// recordFrame re-records the slot's command buffer against the framebuffer of image.
	recordFrame(slot int, image uint32) error
	submitFrame(slot int) error
	presentFrame(slot int, image uint32) vk.Result
	rebuildSwapchain() error
	waitIdle() error
}

// FrameScheduler drives the per-frame loop over MaxFramesInFlight slots.
type FrameScheduler struct {
	device   frameDevice
	log      *Logger
	slot     int
	resized  bool
	now      func() time.Duration
	start    time.Duration
	frames   uint64
	rebuilds uint64
}

func newFrameScheduler(device frameDevice, log *Logger) *FrameScheduler {
	s := &FrameScheduler{
		device: device,
		log:    log,
		now:    hrtime.Now,
	}
	s.start = s.now()
	return s
}

// NotifyResized marks the swapchain stale; it is rebuilt after the next present.
func (s *FrameScheduler) NotifyResized() {
	s.resized = true
}

// Slot is the in-flight slot the next frame will use.
func (s *FrameScheduler) Slot() int { return s.slot }

// Stats reports frames presented and swapchain rebuilds so far.
func (s *FrameScheduler) Stats() (frames, rebuilds uint64) {
	return s.frames, s.rebuilds
}

// DrawFrame renders one frame. A stale surface is rebuilt and the frame dropped;
// any other failure is returned.
func (s *FrameScheduler) DrawFrame() error {
	slot := s.slot

	if err := s.device.waitForFrame(slot); err != nil {
		return err
	}
	if err := s.device.updateUniforms(slot, s.now()-s.start); err != nil {
		return err
	}

	image, ret := s.device.acquireImage(slot)
	switch ret {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		// Nothing was submitted and the fence is still signaled, so the slot stays put.
		return s.rebuild("acquire out of date")
	default:
		return errors.Wrap(NewError(ret), "acquire next image")
	}

	if err := s.device.resetFrame(slot); err != nil {
		return err
	}
	if err := s.device.recordFrame(slot, image); err != nil {
		return err
	}
	if err := s.device.submitFrame(slot); err != nil {
		return err
	}

	ret = s.device.presentFrame(slot, image)
	switch {
	case ret == vk.ErrorOutOfDate, ret == vk.Suboptimal, s.resized:
		s.resized = false
		if err := s.rebuild("present"); err != nil {
			return err
		}
	case isError(ret):
		return errors.Wrap(NewError(ret), "queue present")
	}

	s.frames++
	s.slot = (s.slot + 1) % MaxFramesInFlight
	return nil
}

func (s *FrameScheduler) rebuild(reason string) error {
	s.rebuilds++
	s.log.Debugf("rebuilding swapchain (%s)", reason)
	return s.device.rebuildSwapchain()
}

// Run draws frames until the display asks to close, then waits for the device
// to go idle so the caller may release resources.
func (s *FrameScheduler) Run(display Display) error {
	display.OnResize(s.NotifyResized)
	for !display.ShouldClose() {
		display.PollEvents()
		if err := s.DrawFrame(); err != nil {
			if ierr := s.device.waitIdle(); ierr != nil {
				s.log.Errorf("wait idle: %v", ierr)
			}
			return err
		}
	}
	s.log.Infof("%d frames, %d swapchain rebuilds", s.frames, s.rebuilds)
	return s.device.waitIdle()
}
