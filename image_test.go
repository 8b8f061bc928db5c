package meshvk

import (
	"testing"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func TestImagePlanTransitionTracksLayout(t *testing.T) {
	img := &CoreImage{format: vk.FormatR8g8b8a8Srgb, layout: vk.ImageLayoutUndefined}

	b, _, err := img.planTransition(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	if err != nil {
		t.Fatal(err)
	}
	if b.OldLayout != vk.ImageLayoutUndefined || b.NewLayout != vk.ImageLayoutTransferDstOptimal {
		t.Errorf("barrier layouts: have %d -> %d", b.OldLayout, b.NewLayout)
	}
	if img.Layout() != vk.ImageLayoutUndefined {
		t.Errorf("planning changed the layout to %d", img.Layout())
	}

	// The image is still Undefined, so asking to leave TransferDst must fail.
	_, _, err = img.planTransition(vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	if errors.Cause(err) != ErrLayoutMismatch {
		t.Errorf("have %v, want ErrLayoutMismatch", err)
	}
}

func TestImagePlanTransitionUnsupported(t *testing.T) {
	img := &CoreImage{format: vk.FormatR8g8b8a8Srgb, layout: vk.ImageLayoutShaderReadOnlyOptimal}
	_, _, err := img.planTransition(vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutPresentSrc)
	if errors.Cause(err) != ErrUnsupportedTransition {
		t.Errorf("have %v, want ErrUnsupportedTransition", err)
	}
	if img.Layout() != vk.ImageLayoutShaderReadOnlyOptimal {
		t.Errorf("layout changed to %d", img.Layout())
	}
}
