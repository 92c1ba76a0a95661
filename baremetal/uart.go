// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package baremetal

// Putc busy-waits until the transmitter reports ready, then sends c.
// There is no timeout: if the device never raises LSRTxReady this
// blocks forever, as a polled bare-metal driver does. Returns c.
func Putc(p Port, c byte) byte {
	for p.ReadStatus()&LSRTxReady == 0 {
	}
	p.WriteData(c)
	return c
}

// Puts transmits s up to its NUL terminator, then a line feed. The
// line feed is not part of the buffer.
func Puts(p Port, s []byte) {
	for i := 0; i < len(s) && s[i] != 0; i++ {
		Putc(p, s[i])
	}
	Putc(p, '\n')
}
