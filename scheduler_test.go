package meshvk

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// fakeDevice models fences, a swapchain extent and the calls the scheduler makes.
type fakeDevice struct {
	t        *testing.T
	signaled [MaxFramesInFlight]bool
	pending  [MaxFramesInFlight]bool
	calls    []string
	waits    int
	submits  []int
	rebuilds int

	images  uint32
	next    uint32
	fbSize  [2]int
	extent  [2]int
	acquire []vk.Result
	present []vk.Result
}

func newFakeDevice(t *testing.T, width, height int) *fakeDevice {
	d := &fakeDevice{t: t, images: 3, fbSize: [2]int{width, height}, extent: [2]int{width, height}}
	for i := range d.signaled {
		d.signaled[i] = true
	}
	return d
}

func (d *fakeDevice) record(format string, args ...interface{}) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

// waitForFrame completes the slot's outstanding GPU work, as a real fence wait would.
func (d *fakeDevice) waitForFrame(slot int) error {
	d.waits++
	d.record("wait %d", slot)
	if d.pending[slot] {
		d.pending[slot] = false
		d.signaled[slot] = true
	}
	return nil
}

func (d *fakeDevice) resetFrame(slot int) error {
	d.record("reset %d", slot)
	if !d.signaled[slot] {
		d.t.Errorf("reset of slot %d while its fence is unsignaled", slot)
	}
	d.signaled[slot] = false
	return nil
}

func (d *fakeDevice) updateUniforms(slot int, elapsed time.Duration) error {
	d.record("uniforms %d", slot)
	if d.pending[slot] {
		d.t.Errorf("uniforms of slot %d written while in flight", slot)
	}
	return nil
}

func (d *fakeDevice) acquireImage(slot int) (uint32, vk.Result) {
	d.record("acquire %d", slot)
	if len(d.acquire) > 0 {
		ret := d.acquire[0]
		d.acquire = d.acquire[1:]
		if ret == vk.ErrorOutOfDate {
			return 0, ret
		}
	}
	image := d.next
	d.next = (d.next + 1) % d.images
	return image, vk.Success
}

func (d *fakeDevice) recordFrame(slot int, image uint32) error {
	d.record("record %d %d", slot, image)
	if d.pending[slot] {
		d.t.Errorf("command buffer of slot %d re-recorded while in flight", slot)
	}
	return nil
}

func (d *fakeDevice) submitFrame(slot int) error {
	d.record("submit %d", slot)
	for other, busy := range d.pending {
		if busy && other == slot {
			d.t.Errorf("slot %d submitted twice without a wait", slot)
		}
	}
	d.pending[slot] = true
	d.submits = append(d.submits, slot)
	return nil
}

func (d *fakeDevice) presentFrame(slot int, image uint32) vk.Result {
	d.record("present %d %d", slot, image)
	if len(d.present) > 0 {
		ret := d.present[0]
		d.present = d.present[1:]
		return ret
	}
	return vk.Success
}

func (d *fakeDevice) rebuildSwapchain() error {
	d.record("rebuild")
	d.rebuilds++
	d.extent = d.fbSize
	return nil
}

func (d *fakeDevice) waitIdle() error {
	d.record("idle")
	for i := range d.pending {
		d.pending[i] = false
		d.signaled[i] = true
	}
	return nil
}

func newTestScheduler(d *fakeDevice) *FrameScheduler {
	s := newFrameScheduler(d, DiscardLogger())
	var clock time.Duration
	s.now = func() time.Duration {
		clock += 16 * time.Millisecond
		return clock
	}
	return s
}

func TestSchedulerWaitsOncePerFrame(t *testing.T) {
	d := newFakeDevice(t, 800, 640)
	s := newTestScheduler(d)

	const n = 7
	for i := 0; i < n; i++ {
		if err := s.DrawFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if d.waits != n {
		t.Errorf("fence waits: have %d, want %d", d.waits, n)
	}
	want := []int{0, 1, 0, 1, 0, 1, 0}
	if !reflect.DeepEqual(d.submits, want) {
		t.Errorf("submitted slots: have %v, want %v", d.submits, want)
	}
}

func TestSchedulerSlotCyclesAcrossRebuilds(t *testing.T) {
	d := newFakeDevice(t, 800, 640)
	d.present = []vk.Result{vk.Success, vk.Suboptimal, vk.Success, vk.ErrorOutOfDate, vk.Success}
	s := newTestScheduler(d)

	var slots []int
	for i := 0; i < 6; i++ {
		slots = append(slots, s.Slot())
		if i == 2 {
			s.NotifyResized()
		}
		if err := s.DrawFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if want := []int{0, 1, 0, 1, 0, 1}; !reflect.DeepEqual(slots, want) {
		t.Errorf("slots: have %v, want %v", slots, want)
	}
	if d.rebuilds != 3 {
		t.Errorf("rebuilds: have %d, want 3", d.rebuilds)
	}
	if s.Slot() != 0 {
		t.Errorf("final slot: have %d, want 0", s.Slot())
	}
}

func TestSchedulerAcquireOutOfDateDropsFrame(t *testing.T) {
	d := newFakeDevice(t, 800, 640)
	d.acquire = []vk.Result{vk.ErrorOutOfDate}
	s := newTestScheduler(d)

	if err := s.DrawFrame(); err != nil {
		t.Fatal(err)
	}
	want := []string{"wait 0", "uniforms 0", "acquire 0", "rebuild"}
	if !reflect.DeepEqual(d.calls, want) {
		t.Errorf("calls: have %v, want %v", d.calls, want)
	}
	if s.Slot() != 0 {
		t.Errorf("slot advanced to %d on a dropped frame", s.Slot())
	}

	// The fence was never reset, so the retry must not deadlock or double-reset.
	d.calls = nil
	if err := s.DrawFrame(); err != nil {
		t.Fatal(err)
	}
	if len(d.submits) != 1 || d.submits[0] != 0 || s.Slot() != 1 {
		t.Errorf("retry: submits %v, slot %d", d.submits, s.Slot())
	}
}

func TestSchedulerAcquireSuboptimalStillDraws(t *testing.T) {
	d := newFakeDevice(t, 800, 640)
	d.acquire = []vk.Result{vk.Suboptimal}
	s := newTestScheduler(d)
	if err := s.DrawFrame(); err != nil {
		t.Fatal(err)
	}
	if len(d.submits) != 1 || d.rebuilds != 0 {
		t.Errorf("have %d submits and %d rebuilds, want 1 and 0", len(d.submits), d.rebuilds)
	}
}

func TestSchedulerEndToEndResize(t *testing.T) {
	d := newFakeDevice(t, 800, 640)
	s := newTestScheduler(d)

	// Frame 1.
	if err := s.DrawFrame(); err != nil {
		t.Fatal(err)
	}
	want := []string{"wait 0", "uniforms 0", "acquire 0", "reset 0", "record 0 0", "submit 0", "present 0 0"}
	if !reflect.DeepEqual(d.calls, want) {
		t.Errorf("frame 1 calls: have %v, want %v", d.calls, want)
	}
	if s.Slot() != 1 {
		t.Errorf("slot after frame 1: have %d, want 1", s.Slot())
	}

	// Resize to 640x480 before frame 2.
	d.fbSize = [2]int{640, 480}
	s.NotifyResized()

	d.calls = nil
	if err := s.DrawFrame(); err != nil {
		t.Fatal(err)
	}
	want = []string{"wait 1", "uniforms 1", "acquire 1", "reset 1", "record 1 1", "submit 1", "present 1 1", "rebuild"}
	if !reflect.DeepEqual(d.calls, want) {
		t.Errorf("frame 2 calls: have %v, want %v", d.calls, want)
	}
	if d.rebuilds != 1 {
		t.Errorf("rebuilds before frame 3: have %d, want 1", d.rebuilds)
	}
	if d.extent != [2]int{640, 480} {
		t.Errorf("extent after rebuild: have %v, want [640 480]", d.extent)
	}

	// Frame 3 must not rebuild again.
	if err := s.DrawFrame(); err != nil {
		t.Fatal(err)
	}
	if d.rebuilds != 1 {
		t.Errorf("rebuilds after frame 3: have %d, want 1", d.rebuilds)
	}
}

func TestSchedulerRecordsAcquiredImage(t *testing.T) {
	d := newFakeDevice(t, 800, 640)
	d.next = 2
	s := newTestScheduler(d)
	if err := s.DrawFrame(); err != nil {
		t.Fatal(err)
	}
	if d.calls[4] != "record 0 2" {
		t.Errorf("have %q, want the framebuffer of image 2 for slot 0", d.calls[4])
	}
}

func TestSchedulerPresentError(t *testing.T) {
	d := newFakeDevice(t, 800, 640)
	d.present = []vk.Result{vk.ErrorDeviceLost}
	s := newTestScheduler(d)
	err := s.DrawFrame()
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Cause(err) == nil || d.rebuilds != 0 {
		t.Errorf("have %v with %d rebuilds", err, d.rebuilds)
	}
}

// fakeDisplay closes after a fixed number of polls and resizes once.
type fakeDisplay struct {
	polls    int
	closeAt  int
	resizeAt int
	onResize func()
}

func (f *fakeDisplay) CreateSurface(vk.Instance) (vk.Surface, error) { return vk.NullSurface, nil }
func (f *fakeDisplay) FramebufferSize() (int, int)                   { return 800, 640 }
func (f *fakeDisplay) RequiredInstanceExtensions() []string          { return nil }
func (f *fakeDisplay) WaitEvents()                                   {}
func (f *fakeDisplay) ShouldClose() bool                             { return f.polls >= f.closeAt }
func (f *fakeDisplay) OnResize(fn func())                            { f.onResize = fn }

func (f *fakeDisplay) PollEvents() {
	f.polls++
	if f.polls == f.resizeAt && f.onResize != nil {
		f.onResize()
	}
}

func TestSchedulerRun(t *testing.T) {
	d := newFakeDevice(t, 800, 640)
	s := newTestScheduler(d)
	display := &fakeDisplay{closeAt: 5, resizeAt: 3}

	if err := s.Run(display); err != nil {
		t.Fatal(err)
	}
	if len(d.submits) != 5 {
		t.Errorf("frames: have %d, want 5", len(d.submits))
	}
	if d.rebuilds != 1 {
		t.Errorf("rebuilds: have %d, want 1", d.rebuilds)
	}
	if last := d.calls[len(d.calls)-1]; last != "idle" {
		t.Errorf("last call: have %q, want idle", last)
	}
}
