package meshvk

import vk "github.com/vulkan-go/vulkan"

// Display is the window the renderer presents into.
type Display interface {
	// CreateSurface creates the presentation surface for instance.
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	// FramebufferSize reports the drawable size in pixels.
	FramebufferSize() (width, height int)
	RequiredInstanceExtensions() []string
	PollEvents()
	// WaitEvents blocks until at least one window event arrives.
	WaitEvents()
	ShouldClose() bool
	// OnResize registers fn to be called whenever the framebuffer is resized.
	OnResize(fn func())
}
