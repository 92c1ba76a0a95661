// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import "io"

// 16550-compatible register offsets and line status bits. The
// transmitter is always ready: emulated output never back-pressures.
const (
	uartTHR = 0x0 // transmit holding (store) / receive buffer (load)
	uartLSR = 0x5

	LSRDataReady = 0x01
	LSRTxReady   = 0x40
)

// UART is the serial device on the system bus. Transmitted bytes go to
// out; received bytes arrive on a channel and are buffered until the
// guest reads them.
type UART struct {
	base uint32
	out  io.Writer
	rx   chan byte
	buf  []byte
}

func NewUART(base uint32, out io.Writer) *UART {
	return &UART{base: base, out: out, rx: make(chan byte, 16)}
}

// Rx is the receive side, fed by the console goroutine.
func (u *UART) Rx() chan<- byte {
	return u.rx
}

func (u *UART) AddrSpace() (uint32, uint32) {
	return u.base, u.base + UARTSize
}

func (u *UART) fill() {
	select {
	case c, ok := <-u.rx:
		if ok {
			u.buf = append(u.buf, c)
		}
	default:
	}
}

func (u *UART) Load(addr uint32, width int) (uint32, error) {
	u.fill()
	switch addr - u.base {
	case uartTHR:
		if len(u.buf) > 0 {
			c := u.buf[0]
			u.buf = u.buf[1:]
			return uint32(c), nil
		}
		return 0, nil
	case uartLSR:
		lsr := uint32(LSRTxReady)
		if len(u.buf) > 0 {
			lsr |= LSRDataReady
		}
		return lsr, nil
	}
	return 0, nil
}

func (u *UART) Store(addr uint32, width int, v uint32) error {
	if addr == u.base+uartTHR && width == 1 {
		_, err := u.out.Write([]byte{byte(v)})
		return err
	}
	return nil
}
