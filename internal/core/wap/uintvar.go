// Package wap implements the WAP/WSP primitive encodings shared by the WBXML and MMSE
// decoders: the uintvar codec, the WSP field grammars and the Content-Type field.
//
// Every reader takes the buffer and an absolute offset and returns the decoded value,
// the number of bytes it covers and an error. Readers never panic on short input;
// reading past the end of the buffer yields core.ErrTruncated.
package wap

import (
	"firestige.xyz/wapdec/internal/core"
)

// MaxUintvarLen is the longest uintvar accepted as a value.
const MaxUintvarLen = 4

// MaxUintvar is the largest value a valid uintvar can carry.
const MaxUintvar = 1<<(7*MaxUintvarLen) - 1

// ReadUintvar decodes a uintvar at off: seven bits per byte, most significant group first,
// continuing while bit 0x80 is set.
//
// An encoding longer than MaxUintvarLen returns core.ErrOversizedVarint together with the
// byte count up to and including its terminating byte, so the caller can skip it.
func ReadUintvar(buf []byte, off int) (uint32, int, error) {
	if off < 0 {
		return 0, 0, core.ErrTruncated
	}
	var v uint32
	for i := 0; ; i++ {
		p := off + i
		if p >= len(buf) {
			return 0, i, core.ErrTruncated
		}
		b := buf[p]
		if i < MaxUintvarLen {
			v = v<<7 | uint32(b&0x7f)
		}
		if b&0x80 == 0 {
			if i >= MaxUintvarLen {
				return 0, i + 1, core.ErrOversizedVarint
			}
			return v, i + 1, nil
		}
	}
}

// AppendUintvar appends the uintvar encoding of v to dst.
// Values above MaxUintvar produce the five byte form, which ReadUintvar rejects.
func AppendUintvar(dst []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7f)
	v >>= 7
	for v != 0 {
		i--
		tmp[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	return append(dst, tmp[i:]...)
}

// UintvarLen returns the number of bytes AppendUintvar writes for v.
func UintvarLen(v uint32) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

// need reports whether n bytes are readable at off.
func need(buf []byte, off, n int) error {
	if off < 0 || n < 0 || off+n > len(buf) || off+n < off {
		return core.ErrTruncated
	}
	return nil
}
