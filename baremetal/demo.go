// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package baremetal

// Demo states. Idle is terminal: once there the demo never transmits
// another byte.
type State int

const (
	Init State = iota
	Printing
	Idle
)

const greeting = "Hello, RISC-V!"

// Demo owns the statically-sized greeting buffer and walks the fixed
// Init -> Printing -> Idle sequence.
type Demo struct {
	state State
	buf   []byte
}

func NewDemo() *Demo {
	return &Demo{buf: append([]byte(greeting), 0)}
}

func (d *Demo) State() State {
	return d.state
}

// Run transmits the reversed greeting, restores it, and transmits it
// again, leaving the demo Idle. The byte stream on p is exactly
// "!V-CSIR ,olleH\n" then "Hello, RISC-V!\n". Running an already
// started demo does nothing.
func (d *Demo) Run(p Port) {
	if d.state != Init {
		return
	}
	d.state = Printing

	Strrev(d.buf)
	Puts(p, d.buf)
	Strrev(d.buf)
	Puts(p, d.buf)

	d.state = Idle
}

// Spin is the production terminus: the target has no operating system
// to return to, so the entry sequence parks here forever.
func Spin() {
	select {}
}
