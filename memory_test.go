package meshvk

import (
	"testing"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func memoryProps(flags ...vk.MemoryPropertyFlagBits) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = uint32(len(flags))
	for i, f := range flags {
		props.MemoryTypes[i] = vk.MemoryType{PropertyFlags: vk.MemoryPropertyFlags(f)}
	}
	return props
}

func TestFindMemoryType(t *testing.T) {
	hostVisible := vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	props := memoryProps(
		vk.MemoryPropertyDeviceLocalBit,
		vk.MemoryPropertyHostVisibleBit,
		hostVisible,
		hostVisible|vk.MemoryPropertyHostCachedBit,
	)

	tests := []struct {
		name     string
		bits     uint32
		required vk.MemoryPropertyFlagBits
		want     uint32
	}{
		{"device local", 0xf, vk.MemoryPropertyDeviceLocalBit, 0},
		{"all flags must match", 0xf, hostVisible, 2},
		{"first matching bit", 0x8, hostVisible, 3},
		{"no properties", 0x2, 0, 1},
	}
	for _, tt := range tests {
		have, err := findMemoryType(props, tt.bits, vk.MemoryPropertyFlags(tt.required))
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if have != tt.want {
			t.Errorf("%s: have %d, want %d", tt.name, have, tt.want)
		}
	}
}

func TestFindMemoryTypeNone(t *testing.T) {
	props := memoryProps(vk.MemoryPropertyDeviceLocalBit, vk.MemoryPropertyHostVisibleBit)
	_, err := findMemoryType(props, 0x1, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit))
	if errors.Cause(err) != ErrNoMemoryType {
		t.Fatalf("have %v, want ErrNoMemoryType", err)
	}
	_, err = findMemoryType(props, 0x0, 0)
	if errors.Cause(err) != ErrNoMemoryType {
		t.Fatalf("empty type bits: have %v, want ErrNoMemoryType", err)
	}
}
