// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package baremetal is the classic polled-UART boot demo: transmit a
// greeting, reverse it in place, transmit again. The UART registers are
// an injected capability so the demo runs against real MMIO or a test
// double alike.
package baremetal

import "rvemu/machine"

// 16550 register layout seen by the driver: the transmit holding
// register at offset 0, the line status register at offset 5, bit 0x40
// of which means the transmitter can take the next byte.
const (
	RegTHR = 0x0
	RegLSR = 0x5

	LSRTxReady = 0x40
)

// Port is the UART register block as the driver sees it.
type Port interface {
	ReadStatus() byte
	WriteData(b byte)
}

// MMIOPort adapts a machine bus region to the Port capability, so the
// demo pokes the emulated UART through ordinary loads and stores.
type MMIOPort struct {
	Bus  *machine.Bus
	Base uint32
}

func (p *MMIOPort) ReadStatus() byte {
	v, err := p.Bus.Load(p.Base+RegLSR, 1)
	if err != nil {
		return 0
	}
	return byte(v)
}

func (p *MMIOPort) WriteData(b byte) {
	p.Bus.Store(p.Base+RegTHR, 1, uint32(b))
}
