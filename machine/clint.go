// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import (
	"math"
	"time"
)

// CLINT register offsets, per the chromite memory map.
const (
	clintMTimeCmpL = 0x4000
	clintMTimeCmpH = 0x4004
	clintMTimeL    = 0xBFF8
	clintMTimeH    = 0xBFFC
)

// CLINT is the core-local interruptor: a free-running microsecond timer
// and a compare register that raises the machine timer interrupt.
type CLINT struct {
	base     uint32
	start    time.Time
	mtime    uint64
	mtimecmp uint64
}

func NewCLINT(base uint32) *CLINT {
	return &CLINT{base: base, start: time.Now(), mtimecmp: math.MaxUint32}
}

// Tick advances mtime from the wall clock and mirrors the compare
// result into the MTIP bit of the CSR file.
func (c *CLINT) Tick(csrs *CSRFile) {
	c.mtime = uint64(time.Since(c.start).Microseconds())
	csrs.SetMTIP(c.mtime >= c.mtimecmp)
}

func (c *CLINT) AddrSpace() (uint32, uint32) {
	return c.base, c.base + CLINTSize
}

func (c *CLINT) Load(addr uint32, width int) (uint32, error) {
	switch addr - c.base {
	case clintMTimeCmpL:
		return uint32(c.mtimecmp), nil
	case clintMTimeCmpH:
		return uint32(c.mtimecmp >> 32), nil
	case clintMTimeL:
		return uint32(c.mtime), nil
	case clintMTimeH:
		return uint32(c.mtime >> 32), nil
	}
	return 0, nil
}

func (c *CLINT) Store(addr uint32, width int, v uint32) error {
	switch addr - c.base {
	case clintMTimeCmpL:
		c.mtimecmp = (c.mtimecmp &^ 0xFFFFFFFF) | uint64(v)
	case clintMTimeCmpH:
		c.mtimecmp = (c.mtimecmp & 0xFFFFFFFF) | uint64(v)<<32
	}
	return nil
}
