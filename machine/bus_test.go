// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import (
	"bytes"
	"errors"
	"testing"
)

func TestRAMWidths(t *testing.T) {
	ram := NewRAM(0, 16)

	if err := ram.Store(0, 4, 0xAABBCCDD); err != nil {
		t.Fatal(err)
	}
	if got := ram.mem[0]; got != 0xDD {
		t.Fatalf("little endian: mem[0] = %02X, want DD", got)
	}

	if err := ram.Store(0, 2, 0x0011); err != nil {
		t.Fatal(err)
	}
	if err := ram.Store(0, 1, 0xEE); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xEE, 0x00, 0xBB, 0xAA}
	if !bytes.Equal(ram.mem[:4], want) {
		t.Fatalf("mem = % 02X, want % 02X", ram.mem[:4], want)
	}

	v, err := ram.Load(0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xAABB00EE {
		t.Fatalf("load32 = %08X, want AABB00EE", v)
	}
	if v, _ := ram.Load(2, 2); v != 0xAABB {
		t.Fatalf("load16 = %04X, want AABB", v)
	}
	if v, _ := ram.Load(2, 1); v != 0xBB {
		t.Fatalf("load8 = %02X, want BB", v)
	}
}

func TestBusFaults(t *testing.T) {
	bus := NewBus(NewRAM(RAMBase, 64))

	_, err := bus.Load(RAMBase+1, 4)
	var be *BusError
	if !errors.As(err, &be) || be.Kind != ErrMisaligned {
		t.Fatalf("misaligned load: got %v", err)
	}

	err = bus.Store(0x40000000, 4, 0)
	if !errors.As(err, &be) || be.Kind != ErrUnmapped {
		t.Fatalf("unmapped store: got %v", err)
	}

	// in range for the device but past the end of its backing memory
	_, err = bus.Load(RAMBase+62, 4)
	if err == nil {
		t.Fatal("partial out-of-range load succeeded")
	}
}

func TestUARTTransmit(t *testing.T) {
	var out bytes.Buffer
	u := NewUART(UARTBase, &out)

	if v, _ := u.Load(UARTBase+uartLSR, 1); v&LSRTxReady == 0 {
		t.Fatal("transmitter not ready")
	}
	if err := u.Store(UARTBase+uartTHR, 1, 'a'); err != nil {
		t.Fatal(err)
	}
	if out.String() != "a" {
		t.Fatalf("output %q, want %q", out.String(), "a")
	}

	// only byte-wide stores hit the holding register
	if err := u.Store(UARTBase+uartTHR, 4, 'b'); err != nil {
		t.Fatal(err)
	}
	if out.String() != "a" {
		t.Fatalf("word store transmitted: %q", out.String())
	}
}

func TestUARTReceive(t *testing.T) {
	u := NewUART(UARTBase, &bytes.Buffer{})

	if v, _ := u.Load(UARTBase+uartLSR, 1); v&LSRDataReady != 0 {
		t.Fatal("data ready with empty receiver")
	}

	u.Rx() <- 'x'

	v, _ := u.Load(UARTBase+uartLSR, 1)
	if v&LSRDataReady == 0 {
		t.Fatal("data ready not raised")
	}
	if c, _ := u.Load(UARTBase+uartTHR, 1); c != 'x' {
		t.Fatalf("received %q, want %q", c, 'x')
	}
	if v, _ := u.Load(UARTBase+uartLSR, 1); v&LSRDataReady != 0 {
		t.Fatal("data ready still set after draining")
	}
}

func TestCLINTRegisters(t *testing.T) {
	c := NewCLINT(CLINTBase)

	if err := c.Store(CLINTBase+clintMTimeCmpL, 4, 0x11223344); err != nil {
		t.Fatal(err)
	}
	if err := c.Store(CLINTBase+clintMTimeCmpH, 4, 0x55667788); err != nil {
		t.Fatal(err)
	}
	if c.mtimecmp != 0x5566778811223344 {
		t.Fatalf("mtimecmp = %016X", c.mtimecmp)
	}
	if v, _ := c.Load(CLINTBase+clintMTimeCmpL, 4); v != 0x11223344 {
		t.Fatalf("mtimecmp low = %08X", v)
	}
	if v, _ := c.Load(CLINTBase+clintMTimeCmpH, 4); v != 0x55667788 {
		t.Fatalf("mtimecmp high = %08X", v)
	}

	csrs := NewCSRFile()
	c.mtimecmp = 0
	c.Tick(csrs)
	if csrs.Read(CSRMIP)&mipMTIP == 0 {
		t.Fatal("MTIP not set when mtime >= mtimecmp")
	}
	c.mtimecmp = ^uint64(0)
	c.Tick(csrs)
	if csrs.Read(CSRMIP)&mipMTIP != 0 {
		t.Fatal("MTIP not cleared when mtime < mtimecmp")
	}

	if v, _ := c.Load(CLINTBase+clintMTimeL, 4); uint64(v) > c.mtime {
		t.Fatalf("mtime low reads ahead of mtime: %08X", v)
	}
}
