// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import "encoding/binary"

// RAM is a little-endian byte-addressed memory device.
type RAM struct {
	base uint32
	mem  []byte
}

func NewRAM(base uint32, size int) *RAM {
	return &RAM{base: base, mem: make([]byte, size)}
}

func (r *RAM) AddrSpace() (uint32, uint32) {
	return r.base, r.base + uint32(len(r.mem))
}

func (r *RAM) Load(addr uint32, width int) (uint32, error) {
	off := int(addr - r.base)
	if off+width > len(r.mem) {
		return 0, &BusError{ErrUnmapped, addr}
	}
	switch width {
	case 1:
		return uint32(r.mem[off]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(r.mem[off:])), nil
	default:
		return binary.LittleEndian.Uint32(r.mem[off:]), nil
	}
}

func (r *RAM) Store(addr uint32, width int, v uint32) error {
	off := int(addr - r.base)
	if off+width > len(r.mem) {
		return &BusError{ErrUnmapped, addr}
	}
	switch width {
	case 1:
		r.mem[off] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(r.mem[off:], uint16(v))
	default:
		binary.LittleEndian.PutUint32(r.mem[off:], v)
	}
	return nil
}

// WriteBytes copies a program image into RAM, used by the loaders.
func (r *RAM) WriteBytes(addr uint32, b []byte) error {
	off := int(addr - r.base)
	if off < 0 || off+len(b) > len(r.mem) {
		return &BusError{ErrUnmapped, addr}
	}
	copy(r.mem[off:], b)
	return nil
}
