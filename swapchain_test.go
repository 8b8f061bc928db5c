package meshvk

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func surfaceCaps(minCount, maxCount uint32, minExt, maxExt vk.Extent2D) vk.SurfaceCapabilities {
	return vk.SurfaceCapabilities{
		MinImageCount:           minCount,
		MaxImageCount:           maxCount,
		MinImageExtent:          minExt,
		MaxImageExtent:          maxExt,
		CurrentTransform:        vk.SurfaceTransformIdentityBit,
		SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max uint32
		want     uint32
	}{
		{2, 0, 3},
		{2, 2, 2},
		{2, 8, 3},
		{3, 3, 3},
	}
	for _, tt := range tests {
		caps := surfaceCaps(tt.min, tt.max, vk.Extent2D{}, vk.Extent2D{})
		if have := chooseImageCount(caps); have != tt.want {
			t.Errorf("min=%d max=%d: have %d, want %d", tt.min, tt.max, have, tt.want)
		}
	}
}

func TestChooseExtent(t *testing.T) {
	caps := surfaceCaps(2, 0, vk.Extent2D{Width: 1, Height: 1}, vk.Extent2D{Width: 1024, Height: 1024})
	tests := []struct {
		width, height int
		want          vk.Extent2D
	}{
		{1920, 1080, vk.Extent2D{Width: 1024, Height: 1024}},
		{800, 640, vk.Extent2D{Width: 800, Height: 640}},
		{0, 480, vk.Extent2D{Width: 1, Height: 480}},
	}
	for _, tt := range tests {
		have := chooseExtent(caps, tt.width, tt.height)
		if have.Width != tt.want.Width || have.Height != tt.want.Height {
			t.Errorf("%dx%d: have %dx%d, want %dx%d", tt.width, tt.height,
				have.Width, have.Height, tt.want.Width, tt.want.Height)
		}
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	rgba := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	bgra := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	if have := chooseSurfaceFormat([]vk.SurfaceFormat{rgba, bgra}); have.Format != bgra.Format {
		t.Errorf("exact match: have format %d, want %d", have.Format, bgra.Format)
	}
	if have := chooseSurfaceFormat([]vk.SurfaceFormat{unorm, rgba}); have.Format != unorm.Format {
		t.Errorf("fallback: have format %d, want %d", have.Format, unorm.Format)
	}
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		modes []vk.PresentMode
		want  vk.PresentMode
	}{
		{[]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{[]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}, vk.PresentModeFifo},
		{nil, vk.PresentModeFifo},
	}
	for _, tt := range tests {
		if have := choosePresentMode(tt.modes); have != tt.want {
			t.Errorf("%v: have %d, want %d", tt.modes, have, tt.want)
		}
	}
}

func TestChooseDepthFormat(t *testing.T) {
	attachment := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	supported := func(formats ...vk.Format) func(vk.Format) vk.FormatFeatureFlags {
		return func(f vk.Format) vk.FormatFeatureFlags {
			for _, s := range formats {
				if s == f {
					return attachment
				}
			}
			return 0
		}
	}

	have, err := chooseDepthFormat(supported(vk.FormatD24UnormS8Uint, vk.FormatD32SfloatS8Uint))
	if err != nil || have != vk.FormatD32SfloatS8Uint {
		t.Errorf("have %d %v, want D32_SFLOAT_S8_UINT", have, err)
	}
	have, err = chooseDepthFormat(supported(vk.FormatD32Sfloat, vk.FormatD24UnormS8Uint))
	if err != nil || have != vk.FormatD32Sfloat {
		t.Errorf("have %d %v, want D32_SFLOAT", have, err)
	}
	if _, err := chooseDepthFormat(supported(vk.FormatD16Unorm)); err != ErrNoDepthFormat {
		t.Errorf("have %v, want ErrNoDepthFormat", err)
	}
}

func TestPlanSwapchainIsRepeatable(t *testing.T) {
	caps := surfaceCaps(2, 0, vk.Extent2D{Width: 1, Height: 1}, vk.Extent2D{Width: 4096, Height: 4096})
	formats := []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}}
	modes := []vk.PresentMode{vk.PresentModeFifo}

	first, err := planSwapchain(caps, formats, modes, 640, 480)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		next, _ := planSwapchain(caps, formats, modes, 640, 480)
		if next.extent.Width != 640 || next.extent.Height != 480 {
			t.Fatalf("rebuild %d: extent %dx%d, want 640x480", i, next.extent.Width, next.extent.Height)
		}
		if next.image_count != first.image_count || next.present_mode != first.present_mode {
			t.Fatalf("rebuild %d: plan changed: %+v", i, next)
		}
	}
	if first.composite_alpha != vk.CompositeAlphaOpaqueBit {
		t.Errorf("composite alpha: have %d", first.composite_alpha)
	}
	if _, err := planSwapchain(caps, nil, modes, 640, 480); err == nil {
		t.Error("expected error for a surface without formats")
	}
}
