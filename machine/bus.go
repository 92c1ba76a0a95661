// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import "fmt"

// Physical address map. RAM sits at the conventional RV32 reset base,
// the UART follows the 16550 convention at 0x10000000.
const (
	UARTBase  = 0x10000000
	UARTSize  = 0x100
	CLINTBase = 0x11000000
	CLINTSize = 0xC000
	FBBase    = 0x12000000
	FBSize    = 0x80
	RAMBase   = 0x80000000
)

type BusErrorKind int

const (
	ErrMisaligned BusErrorKind = iota
	ErrUnmapped
)

// BusError is reported by the bus for accesses the machine cannot
// complete; the CPU turns it into the matching RISC-V exception.
type BusError struct {
	Kind BusErrorKind
	Addr uint32
}

func (e *BusError) Error() string {
	kind := "unmapped"
	if e.Kind == ErrMisaligned {
		kind = "misaligned"
	}
	return fmt.Sprintf("bus error: %s @ %08X", kind, e.Addr)
}

// Device is one addressable region on the system bus. Load and Store
// receive absolute byte addresses; width is 1, 2 or 4.
type Device interface {
	AddrSpace() (lo, hi uint32)
	Load(addr uint32, width int) (uint32, error)
	Store(addr uint32, width int, v uint32) error
}

type Bus struct {
	devices []Device
}

func NewBus(devs ...Device) *Bus {
	return &Bus{devices: devs}
}

func (b *Bus) Attach(d Device) {
	b.devices = append(b.devices, d)
}

func (b *Bus) find(addr uint32) Device {
	for _, d := range b.devices {
		lo, hi := d.AddrSpace()
		if addr >= lo && addr < hi {
			return d
		}
	}
	return nil
}

func (b *Bus) Load(addr uint32, width int) (uint32, error) {
	if addr%uint32(width) != 0 {
		return 0, &BusError{ErrMisaligned, addr}
	}
	if d := b.find(addr); d != nil {
		return d.Load(addr, width)
	}
	return 0, &BusError{ErrUnmapped, addr}
}

func (b *Bus) Store(addr uint32, width int, v uint32) error {
	if addr%uint32(width) != 0 {
		return &BusError{ErrMisaligned, addr}
	}
	if d := b.find(addr); d != nil {
		return d.Store(addr, width, v)
	}
	return &BusError{ErrUnmapped, addr}
}
