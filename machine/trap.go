// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import "fmt"

// mcause values. Interrupt causes carry the high bit.
const (
	ExcInstrMisaligned = 0
	ExcInstrAccess     = 1
	ExcIllegal         = 2
	ExcBreakpoint      = 3
	ExcLoadMisaligned  = 4
	ExcLoadAccess      = 5
	ExcStoreMisaligned = 6
	ExcStoreAccess     = 7
	ExcEnvCallU        = 8
	ExcEnvCallM        = 11

	IntTimerM = 0x80000007
)

// Exception is a RISC-V trap cause plus the faulting address (or the
// raw instruction word for illegal-instruction traps).
type Exception struct {
	Code uint32
	Addr uint32
}

func (e *Exception) Error() string {
	return fmt.Sprintf("exception %d @ %08X", e.Code, e.Addr)
}

func fetchFault(err error, addr uint32) *Exception {
	if be, ok := err.(*BusError); ok && be.Kind == ErrMisaligned {
		return &Exception{ExcInstrMisaligned, addr}
	}
	return &Exception{ExcInstrAccess, addr}
}

func loadFault(err error, addr uint32) *Exception {
	if be, ok := err.(*BusError); ok && be.Kind == ErrMisaligned {
		return &Exception{ExcLoadMisaligned, addr}
	}
	return &Exception{ExcLoadAccess, addr}
}

func storeFault(err error, addr uint32) *Exception {
	if be, ok := err.(*BusError); ok && be.Kind == ErrMisaligned {
		return &Exception{ExcStoreMisaligned, addr}
	}
	return &Exception{ExcStoreAccess, addr}
}
