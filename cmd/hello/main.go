// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// hello runs the bare-metal UART demo on the host: the driver pokes an
// emulated 16550 through MMIO and the bytes land on stdout.
package main

import (
	"flag"
	"os"

	"rvemu/baremetal"
	"rvemu/machine"
)

func main() {
	spinPtr := flag.Bool("spin", false, "park in the idle loop after printing, like the real target")
	flag.Parse()

	m := machine.NewMachine(256*1024, os.Stdout)

	port := &baremetal.MMIOPort{Bus: m.Bus, Base: machine.UARTBase}
	demo := baremetal.NewDemo()
	demo.Run(port)

	if *spinPtr {
		baremetal.Spin()
	}
}
