// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package machine emulates a small RV32IMA_Zicsr system: RAM at the
// reset base, a 16550-convention UART, a CLINT timer, and optionally a
// palette framebuffer, all on one byte-addressed bus.
package machine

import "io"

type Machine struct {
	CPU   *CPU
	Bus   *Bus
	RAM   *RAM
	UART  *UART
	CLINT *CLINT

	csrs *CSRFile
}

// NewMachine assembles the default system. UART output goes to out.
func NewMachine(ramSize int, out io.Writer) *Machine {
	csrs := NewCSRFile()
	ram := NewRAM(RAMBase, ramSize)
	uart := NewUART(UARTBase, out)
	clint := NewCLINT(CLINTBase)
	bus := NewBus(ram, uart, clint)
	return &Machine{
		CPU:   NewCPU(bus, csrs),
		Bus:   bus,
		RAM:   ram,
		UART:  uart,
		CLINT: clint,
		csrs:  csrs,
	}
}

// Step advances the timer and runs one instruction.
func (m *Machine) Step() {
	m.CLINT.Tick(m.csrs)
	m.CPU.Step()
}

// Run steps the machine until it stops or maxSteps instructions have
// executed; maxSteps <= 0 runs without bound.
func (m *Machine) Run(maxSteps int) {
	for i := 0; maxSteps <= 0 || i < maxSteps; i++ {
		m.Step()
		if m.CPU.Stopped {
			return
		}
	}
}
