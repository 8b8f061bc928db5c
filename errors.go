package meshvk

import (
	"log"
	"os"
	"runtime"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	ErrNoPhysicalDevice      = errors.New("no vulkan physical device found")
	ErrNoGraphicsQueue       = errors.New("no queue family with graphics support")
	ErrNoPresentQueue        = errors.New("no queue family with present support")
	ErrNoMemoryType          = errors.New("no memory type satisfies the requested properties")
	ErrNoDepthFormat         = errors.New("no supported depth format")
	ErrUnsupportedTransition = errors.New("unsupported layout transition")
	ErrLayoutMismatch        = errors.New("image is not in the expected layout")
	ErrMissingExtensions     = errors.New("required extensions not available")
)

// FatalLogFile receives the diagnostic written by Fatal.
var FatalLogFile = "fatal_log.txt"

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError converts a failed vk.Result into an error naming the caller.
func NewError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return errors.Wrapf(vk.Error(ret), "vulkan error (%d)", ret)
	}
	frame := newStackFrame(pc)
	return errors.Wrapf(vk.Error(ret), "vulkan error (%d) on %s", ret, frame)
}

// Fatal runs finalizers, records err to the fatal log and to stderr, then exits.
func Fatal(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	log.New(os.Stderr, "FATAL: ", log.Ldate|log.Ltime).Printf("%+v", err)

	file, ferr := os.OpenFile(FatalLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if ferr != nil {
		log.Fatal(err)
	}
	fatal_log := log.New(file, "FATAL: ", log.Ldate|log.Ltime|log.Lshortfile)
	fatal_log.Fatalf("%+v", err)
}
