// Package unsafecast converts between compatible memory layouts without
// copying, used on the hot decode paths where byte buffers are
// reinterpreted as typed value slices.
package unsafecast

import "unsafe"

// slice mirrors the runtime layout of Go slices, with an unsafe.Pointer
// for the backing array so the garbage collector keeps tracking it.
type slice struct {
	ptr unsafe.Pointer
	len int
	cap int
}

// Slice reinterprets data as a []To sharing the same backing array, with
// length and capacity scaled by the element size ratio. The caller is
// responsible for the layouts being compatible; the decoders only use it
// between byte buffers and fixed-width numeric types.
func Slice[To, From any](data []From) []To {
	var from From
	var to To
	s := slice{
		ptr: *(*unsafe.Pointer)(unsafe.Pointer(&data)),
		len: int(uintptr(len(data)) * unsafe.Sizeof(from) / unsafe.Sizeof(to)),
		cap: int(uintptr(cap(data)) * unsafe.Sizeof(from) / unsafe.Sizeof(to)),
	}
	return *(*[]To)(unsafe.Pointer(&s))
}

// BytesToString returns a string sharing the backing array of data. The
// bytes must not be modified while the string is in use.
func BytesToString(data []byte) string {
	return unsafe.String(unsafe.SliceData(data), len(data))
}
