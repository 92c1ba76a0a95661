// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import "fmt"

// Privilege modes. Only machine and user exist here.
type Mode uint32

const (
	ModeUser    Mode = 0
	ModeMachine Mode = 3
)

// CPU executes the RV32IMA_Zicsr subset. Reg[0] is hardwired to zero.
type CPU struct {
	Reg  [32]uint32
	PC   uint32
	Mode Mode
	CSRs *CSRFile

	// Stopped is set when a trap arrives with no handler installed
	// (mtvec still zero); the run loop treats it as a clean halt.
	Stopped bool
	Trace   bool

	bus      *Bus
	reserved map[uint32]bool
}

func NewCPU(bus *Bus, csrs *CSRFile) *CPU {
	return &CPU{
		PC:       RAMBase,
		Mode:     ModeMachine,
		CSRs:     csrs,
		bus:      bus,
		reserved: make(map[uint32]bool),
	}
}

func (c *CPU) readReg(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return c.Reg[i]
}

func (c *CPU) writeReg(i uint32, v uint32) {
	if i != 0 {
		c.Reg[i] = v
	}
}

// Step runs one instruction, taking a pending timer interrupt first.
func (c *CPU) Step() {
	c.CSRs.CountCycle()

	if c.CSRs.TimerPending() {
		c.trap(&Exception{Code: IntTimerM})
		return
	}

	inst, err := c.bus.Load(c.PC, 4)
	if err != nil {
		c.trap(fetchFault(err, c.PC))
		return
	}

	if c.Trace {
		fmt.Printf("%08x  %08x  %s\n", c.PC, inst, disasm(inst))
	}

	if exc := c.execute(inst); exc != nil {
		c.trap(exc)
	}
}

// trap vectors through mtvec: the current mode goes to MPP, interrupts
// are masked, mepc/mcause/mtval record the trap site.
func (c *CPU) trap(e *Exception) {
	tvec := c.CSRs.Read(CSRMTVec)
	if tvec == 0 {
		if c.Trace {
			fmt.Printf("no trap handler, stopped: %v\n", e)
		}
		c.Stopped = true
		return
	}
	c.CSRs.DisableIRQ()
	c.CSRs.SetMPP(uint32(c.Mode))
	c.Mode = ModeMachine
	c.CSRs.Write(CSRMEPC, c.PC)
	c.CSRs.Write(CSRMCause, e.Code)
	c.CSRs.Write(CSRMTVal, e.Addr)
	c.PC = tvec
}

// execute runs one decoded instruction. On a trap the PC is left at the
// faulting instruction so trap() records it in mepc.
func (c *CPU) execute(inst uint32) *Exception {
	op := opcodeOf(inst)
	rd := rdOf(inst)
	f3 := f3Of(inst)
	rs1 := rs1Of(inst)
	rs2 := rs2Of(inst)
	f7 := f7Of(inst)

	nextPC := c.PC + 4

	switch op {
	case 0x37: // LUI
		c.writeReg(rd, uint32(immU(inst)))

	case 0x17: // AUIPC
		c.writeReg(rd, c.PC+uint32(immU(inst)))

	case 0x6F: // JAL
		c.writeReg(rd, c.PC+4)
		nextPC = c.PC + uint32(immJ(inst))

	case 0x67: // JALR
		tgt := (c.readReg(rs1) + uint32(immI(inst))) &^ 1
		c.writeReg(rd, c.PC+4)
		nextPC = tgt

	case 0x63: // BRANCH
		a := c.readReg(rs1)
		b := c.readReg(rs2)
		var taken bool
		switch f3 {
		case 0x0:
			taken = a == b
		case 0x1:
			taken = a != b
		case 0x4:
			taken = int32(a) < int32(b)
		case 0x5:
			taken = int32(a) >= int32(b)
		case 0x6:
			taken = a < b
		case 0x7:
			taken = a >= b
		default:
			return &Exception{ExcIllegal, inst}
		}
		if taken {
			nextPC = c.PC + uint32(immB(inst))
		}

	case 0x03: // LOAD
		addr := c.readReg(rs1) + uint32(immI(inst))
		var width int
		switch f3 {
		case 0x0, 0x4:
			width = 1
		case 0x1, 0x5:
			width = 2
		case 0x2:
			width = 4
		default:
			return &Exception{ExcIllegal, inst}
		}
		v, err := c.bus.Load(addr, width)
		if err != nil {
			return loadFault(err, addr)
		}
		switch f3 {
		case 0x0:
			v = uint32(int32(int8(v)))
		case 0x1:
			v = uint32(int32(int16(v)))
		}
		c.writeReg(rd, v)

	case 0x23: // STORE
		addr := c.readReg(rs1) + uint32(immS(inst))
		var width int
		switch f3 {
		case 0x0:
			width = 1
		case 0x1:
			width = 2
		case 0x2:
			width = 4
		default:
			return &Exception{ExcIllegal, inst}
		}
		if err := c.bus.Store(addr, width, c.readReg(rs2)); err != nil {
			return storeFault(err, addr)
		}

	case 0x13: // OP-IMM
		a := c.readReg(rs1)
		imm := immI(inst)
		switch f3 {
		case 0x0:
			c.writeReg(rd, a+uint32(imm))
		case 0x1:
			if f7 != 0 {
				return &Exception{ExcIllegal, inst}
			}
			c.writeReg(rd, a<<(uint32(imm)&0x1F))
		case 0x2:
			if int32(a) < imm {
				c.writeReg(rd, 1)
			} else {
				c.writeReg(rd, 0)
			}
		case 0x3:
			if a < uint32(imm) {
				c.writeReg(rd, 1)
			} else {
				c.writeReg(rd, 0)
			}
		case 0x4:
			c.writeReg(rd, a^uint32(imm))
		case 0x5:
			switch f7 {
			case 0x00:
				c.writeReg(rd, a>>(uint32(imm)&0x1F))
			case 0x20:
				c.writeReg(rd, uint32(int32(a)>>(uint32(imm)&0x1F)))
			default:
				return &Exception{ExcIllegal, inst}
			}
		case 0x6:
			c.writeReg(rd, a|uint32(imm))
		case 0x7:
			c.writeReg(rd, a&uint32(imm))
		}

	case 0x33: // OP
		a := c.readReg(rs1)
		b := c.readReg(rs2)
		var v uint32
		if f7 == 1 { // M extension
			switch f3 {
			case 0x0:
				v = a * b
			case 0x1:
				v = uint32((int64(int32(a)) * int64(int32(b))) >> 32)
			case 0x2:
				v = uint32((int64(int32(a)) * int64(b)) >> 32)
			case 0x3:
				v = uint32((uint64(a) * uint64(b)) >> 32)
			case 0x4:
				if b == 0 {
					v = 0xFFFFFFFF
				} else {
					v = uint32(int32(a) / int32(b))
				}
			case 0x5:
				if b == 0 {
					v = 0xFFFFFFFF
				} else {
					v = a / b
				}
			case 0x6:
				if b == 0 {
					v = a
				} else {
					v = uint32(int32(a) % int32(b))
				}
			case 0x7:
				if b == 0 {
					v = a
				} else {
					v = a % b
				}
			}
		} else {
			switch f3 {
			case 0x0:
				if f7 == 0x20 {
					v = a - b
				} else {
					v = a + b
				}
			case 0x1:
				v = a << (b & 0x1F)
			case 0x2:
				if int32(a) < int32(b) {
					v = 1
				}
			case 0x3:
				if a < b {
					v = 1
				}
			case 0x4:
				v = a ^ b
			case 0x5:
				if f7 == 0x20 {
					v = uint32(int32(a) >> (b & 0x1F))
				} else {
					v = a >> (b & 0x1F)
				}
			case 0x6:
				v = a | b
			case 0x7:
				v = a & b
			}
		}
		c.writeReg(rd, v)

	case 0x2F: // AMO
		if f3 != 0x2 {
			return &Exception{ExcIllegal, inst}
		}
		if exc := c.executeAMO(inst, rd, rs1, rs2, f7); exc != nil {
			return exc
		}

	case 0x0F: // FENCE / FENCE.I: execution is sequential, nothing to order

	case 0x73: // SYSTEM
		if f3 == 0x0 {
			switch inst >> 20 {
			case 0x000: // ECALL
				if c.Mode == ModeMachine {
					return &Exception{Code: ExcEnvCallM}
				}
				return &Exception{Code: ExcEnvCallU}
			case 0x001: // EBREAK
				return &Exception{Code: ExcBreakpoint}
			case 0x302: // MRET
				c.CSRs.EnableIRQ()
				nextPC = c.CSRs.Read(CSRMEPC)
				c.Mode = Mode(c.CSRs.MPP())
				c.CSRs.SetMPP(uint32(ModeMachine))
			case 0x105: // WFI: sleep not modelled
			default:
				return &Exception{ExcIllegal, inst}
			}
		} else {
			if f3 == 0x4 {
				return &Exception{ExcIllegal, inst}
			}
			csrAddr := inst >> 20
			old := c.CSRs.Read(csrAddr)
			src := c.readReg(rs1)
			if f3 >= 0x5 { // immediate forms use rs1 as a zimm
				src = rs1
			}
			switch f3 & 0x3 {
			case 0x1:
				c.CSRs.Write(csrAddr, src)
			case 0x2:
				c.CSRs.Write(csrAddr, old|src)
			case 0x3:
				c.CSRs.Write(csrAddr, old&^src)
			}
			c.writeReg(rd, old)
		}

	default:
		return &Exception{ExcIllegal, inst}
	}

	c.PC = nextPC
	c.Reg[0] = 0
	return nil
}

func (c *CPU) executeAMO(inst, rd, rs1, rs2, f7 uint32) *Exception {
	addr := c.readReg(rs1)
	b := c.readReg(rs2)

	switch f7 >> 2 {
	case 0x02: // LR.W
		v, err := c.bus.Load(addr, 4)
		if err != nil {
			return loadFault(err, addr)
		}
		c.reserved[addr] = true
		c.writeReg(rd, v)
		return nil
	case 0x03: // SC.W
		if !c.reserved[addr] {
			c.writeReg(rd, 1)
			return nil
		}
		delete(c.reserved, addr)
		if err := c.bus.Store(addr, 4, b); err != nil {
			return storeFault(err, addr)
		}
		c.writeReg(rd, 0)
		return nil
	}

	var f func(m, b uint32) uint32
	switch f7 >> 2 {
	case 0x01:
		f = func(m, b uint32) uint32 { return b }
	case 0x00:
		f = func(m, b uint32) uint32 { return m + b }
	case 0x04:
		f = func(m, b uint32) uint32 { return m ^ b }
	case 0x0C:
		f = func(m, b uint32) uint32 { return m & b }
	case 0x08:
		f = func(m, b uint32) uint32 { return m | b }
	case 0x10:
		f = func(m, b uint32) uint32 {
			if int32(m) < int32(b) {
				return m
			}
			return b
		}
	case 0x14:
		f = func(m, b uint32) uint32 {
			if int32(m) > int32(b) {
				return m
			}
			return b
		}
	case 0x18:
		f = func(m, b uint32) uint32 {
			if m < b {
				return m
			}
			return b
		}
	case 0x1C:
		f = func(m, b uint32) uint32 {
			if m > b {
				return m
			}
			return b
		}
	default:
		return &Exception{ExcIllegal, inst}
	}

	m, err := c.bus.Load(addr, 4)
	if err != nil {
		return loadFault(err, addr)
	}
	if err := c.bus.Store(addr, 4, f(m, b)); err != nil {
		return storeFault(err, addr)
	}
	c.writeReg(rd, m)
	return nil
}
