// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package baremetal

import (
	"bytes"
	"testing"
)

// fakePort reports not-ready for a configurable number of status reads,
// then flips to ready, and records every register access.
type fakePort struct {
	notReady    int
	statusReads int
	writes      []byte
	earlyWrite  bool
}

func (p *fakePort) ReadStatus() byte {
	p.statusReads++
	if p.notReady > 0 {
		p.notReady--
		return 0
	}
	return LSRTxReady
}

func (p *fakePort) WriteData(b byte) {
	if p.notReady > 0 {
		p.earlyWrite = true
	}
	p.writes = append(p.writes, b)
}

func TestPutcGatesOnStatus(t *testing.T) {
	const n = 5
	p := &fakePort{notReady: n}

	if got := Putc(p, 'Q'); got != 'Q' {
		t.Fatalf("Putc returned %q, want %q", got, 'Q')
	}
	if p.statusReads != n+1 {
		t.Fatalf("status reads = %d, want %d", p.statusReads, n+1)
	}
	if len(p.writes) != 1 || p.writes[0] != 'Q' {
		t.Fatalf("writes = %q, want one 'Q'", p.writes)
	}
	if p.earlyWrite {
		t.Fatal("data written before the transmitter was ready")
	}
}

func TestPutcReadyImmediately(t *testing.T) {
	p := &fakePort{}
	Putc(p, 'x')
	if p.statusReads != 1 {
		t.Fatalf("status reads = %d, want 1", p.statusReads)
	}
}

func TestPutsAppendsNewline(t *testing.T) {
	p := &fakePort{}
	Puts(p, append([]byte("hi"), 0))
	if want := []byte("hi\n"); !bytes.Equal(p.writes, want) {
		t.Fatalf("writes = %q, want %q", p.writes, want)
	}
}

func TestPutsStopsAtTerminator(t *testing.T) {
	p := &fakePort{}
	Puts(p, []byte("ab\x00cd"))
	if want := []byte("ab\n"); !bytes.Equal(p.writes, want) {
		t.Fatalf("writes = %q, want %q", p.writes, want)
	}
}
