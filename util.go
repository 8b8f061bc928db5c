package meshvk

import (
	"fmt"
	"runtime"
	"unsafe"
)

const end = "\x00"

func safeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != end[0] {
		return s + end
	}
	return s
}

// safeStrings returns a null-terminated copy of list; the input is left untouched.
func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

// sliceUint32 reinterprets SPIR-V bytecode as the uint32 words vkCreateShaderModule expects.
func sliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// toBytes views n bytes of mapped device memory as a byte slice.
func toBytes(ptr unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(ptr), n)
}

type stackFrame struct {
	file     string
	line     int
	function string
}

func newStackFrame(pc uintptr) stackFrame {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return stackFrame{function: "unknown"}
	}
	file, line := fn.FileLine(pc)
	return stackFrame{file: file, line: line, function: fn.Name()}
}

func (f stackFrame) String() string {
	return fmt.Sprintf("%s:%d (%s)", f.file, f.line, f.function)
}

// missing returns the entries of want that are absent from have.
func missing(want, have []string) []string {
	var out []string
	for _, w := range want {
		found := false
		for _, h := range have {
			if w == h {
				found = true
				break
			}
		}
		if !found {
			out = append(out, w)
		}
	}
	return out
}
