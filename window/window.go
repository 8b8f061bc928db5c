// Package window provides a GLFW-backed Display for the renderer.
package window

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/meshvk"
)

var _ meshvk.Display = (*Window)(nil)

// Init starts GLFW and points the Vulkan loader at GLFW's instance proc address.
// It must run on the main, locked OS thread.
func Init() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "glfw init")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("glfw: vulkan is not supported")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "vulkan init")
	}
	return nil
}

func Terminate() {
	glfw.Terminate()
}

type Options struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

// Window is a client-API-less GLFW window.
type Window struct {
	win      *glfw.Window
	onResize []func()
}

func New(opts Options) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.True)
	if opts.Resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	w := &Window{win: win}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		for _, fn := range w.onResize {
			fn()
		}
	})
	return w, nil
}

func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "create window surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

func (w *Window) PollEvents() { glfw.PollEvents() }
func (w *Window) WaitEvents() { glfw.WaitEvents() }

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

// OnResize adds fn to the callbacks run when the framebuffer size changes.
func (w *Window) OnResize(fn func()) {
	w.onResize = append(w.onResize, fn)
}

// SetShouldClose asks the render loop to stop after the current frame.
func (w *Window) SetShouldClose() {
	w.win.SetShouldClose(true)
}

// SetSize resizes the window content area in screen coordinates.
func (w *Window) SetSize(width, height int) {
	w.win.SetSize(width, height)
}

func (w *Window) Destroy() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
}
