package meshvk

import (
	"reflect"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func family(flags vk.QueueFlagBits) vk.QueueFamilyProperties {
	return vk.QueueFamilyProperties{QueueFlags: vk.QueueFlags(flags), QueueCount: 1}
}

func presentOn(indices ...uint32) func(uint32) bool {
	return func(i uint32) bool {
		for _, idx := range indices {
			if idx == i {
				return true
			}
		}
		return false
	}
}

func TestFindQueueFamilies(t *testing.T) {
	props := []vk.QueueFamilyProperties{
		family(vk.QueueTransferBit),
		family(vk.QueueGraphicsBit | vk.QueueComputeBit),
		family(vk.QueueGraphicsBit),
		family(vk.QueueComputeBit),
	}

	tests := []struct {
		name    string
		present func(uint32) bool
		want    queueFamilies
		shared  bool
		unique  []uint32
	}{
		{"same family", presentOn(1, 2), queueFamilies{1, 1}, true, []uint32{1}},
		{"separate families", presentOn(3), queueFamilies{1, 3}, false, []uint32{1, 3}},
		{"first present wins", presentOn(0, 1), queueFamilies{1, 0}, false, []uint32{1, 0}},
	}
	for _, tt := range tests {
		have, err := findQueueFamilies(props, tt.present)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if have != tt.want {
			t.Errorf("%s: have %+v, want %+v", tt.name, have, tt.want)
		}
		if have.shared() != tt.shared {
			t.Errorf("%s: shared have %v, want %v", tt.name, have.shared(), tt.shared)
		}
		if !reflect.DeepEqual(have.unique(), tt.unique) {
			t.Errorf("%s: unique have %v, want %v", tt.name, have.unique(), tt.unique)
		}
		if n := len(have.queueCreateInfos()); n != len(tt.unique) {
			t.Errorf("%s: %d queue create infos, want %d", tt.name, n, len(tt.unique))
		}
	}
}

func TestFindQueueFamiliesMissing(t *testing.T) {
	props := []vk.QueueFamilyProperties{family(vk.QueueComputeBit), family(vk.QueueTransferBit)}
	if _, err := findQueueFamilies(props, presentOn(0)); err != ErrNoGraphicsQueue {
		t.Errorf("have %v, want ErrNoGraphicsQueue", err)
	}

	props = []vk.QueueFamilyProperties{family(vk.QueueGraphicsBit)}
	if _, err := findQueueFamilies(props, presentOn()); err != ErrNoPresentQueue {
		t.Errorf("have %v, want ErrNoPresentQueue", err)
	}
}
