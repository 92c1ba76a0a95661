// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"rvemu/machine"
)

var Terminated = errors.New("terminated")

// Game drives the machine from the ebiten frame loop when the
// framebuffer window is enabled.
type Game struct {
	m                 *machine.Machine
	fb                *machine.Framebuffer
	stepsPerFrame     int
	lastFrameDuration time.Duration
}

func (g *Game) Update() error {
	startTime := time.Now()

	for i := 0; i < g.stepsPerFrame; i++ {
		g.m.Step()
		if g.m.CPU.Stopped {
			log.Printf("stopped at PC %08X", g.m.CPU.PC)
			return Terminated
		}
	}
	g.lastFrameDuration = time.Since(startTime)

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.fb.Image(), nil)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return machine.ScreenWidth, machine.ScreenHeight
}

func main() {
	elfPtr := flag.String("elf", "", "ELF kernel to load")
	binPtr := flag.String("bin", "", "flat binary to load at the RAM base")
	pcPtr := flag.Uint("pc", 0, "override start PC (0 keeps loader entry)")
	memPtr := flag.Int("mem", 16, "RAM size in MiB")
	stepsPtr := flag.Int("steps", 0, "stop after this many steps (0 = run forever)")
	tracePtr := flag.Bool("t", false, "trace each instruction")
	fbPtr := flag.Bool("fb", false, "open the framebuffer window")
	flag.Parse()

	log.SetFlags(0)

	oldState, err := SetRawConsole()
	if err != nil {
		panic(err)
	}
	defer RestoreConsole(oldState)

	m := machine.NewMachine(*memPtr*1024*1024, os.Stdout)
	m.CPU.Trace = *tracePtr

	switch {
	case *elfPtr != "":
		entry, err := machine.LoadELF(*elfPtr, m.RAM)
		if err != nil {
			log.Fatal("ELF load error: ", err)
		}
		m.CPU.PC = entry
	case *binPtr != "":
		if err := machine.LoadFlat(*binPtr, m.RAM, machine.RAMBase); err != nil {
			log.Fatal("BIN load error: ", err)
		}
		m.CPU.PC = machine.RAMBase
	default:
		fmt.Fprintln(os.Stderr, "no kernel image provided, use -elf or -bin")
		os.Exit(2)
	}

	if *pcPtr != 0 {
		m.CPU.PC = uint32(*pcPtr)
	}

	// console input feeds the UART receiver
	go func(ch chan<- byte) {
		for {
			buf := make([]byte, 1)
			n, err := ConsoleRead(buf)
			if err != nil {
				log.Print("read error on stdin, closing console")
				return
			}
			if n > 0 {
				ch <- buf[0]
			}
		}
	}(m.UART.Rx())

	if *fbPtr {
		fb := machine.NewFramebuffer()
		m.Bus.Attach(fb)

		ebiten.SetWindowSize(800, 600)
		ebiten.SetWindowTitle("rvemu framebuffer")

		g := &Game{m: m, fb: fb, stepsPerFrame: 166666}
		if err := ebiten.RunGame(g); err != nil && err != Terminated {
			log.Panic(err)
		}
		return
	}

	m.Run(*stepsPtr)
	if m.CPU.Stopped {
		log.Printf("stopped at PC %08X", m.CPU.PC)
	}
}
