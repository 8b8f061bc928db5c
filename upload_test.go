package meshvk

import "testing"

func TestUploadTextureRejectsBadSize(t *testing.T) {
	tests := []struct {
		name          string
		pixels        int
		width, height uint32
	}{
		{"empty extent", 0, 0, 0},
		{"zero width", 16, 0, 4},
		{"zero height", 16, 4, 0},
		{"wrapping product", 0, 1 << 15, 1 << 15},
		{"short buffer", 15, 2, 2},
		{"long buffer", 17, 2, 2},
	}
	for _, tt := range tests {
		// Rejected before any device call, so a zero Uploader is enough.
		img, err := (&Uploader{}).UploadTexture(make([]byte, tt.pixels), tt.width, tt.height)
		if err == nil || img != nil {
			t.Errorf("%s: have (%v, %v), want an error", tt.name, img, err)
		}
	}
}

func TestCheckTextureSize(t *testing.T) {
	if err := checkTextureSize(2*3*4, 2, 3); err != nil {
		t.Errorf("2x3: %v", err)
	}
	if err := checkTextureSize(1<<26, 1<<12, 1<<12); err != nil {
		t.Errorf("4096x4096: %v", err)
	}
}
