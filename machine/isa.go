// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import "fmt"

// Instruction field extractors.
func opcodeOf(inst uint32) uint32 { return inst & 0x7F }
func rdOf(inst uint32) uint32     { return (inst >> 7) & 0x1F }
func f3Of(inst uint32) uint32     { return (inst >> 12) & 0x7 }
func rs1Of(inst uint32) uint32    { return (inst >> 15) & 0x1F }
func rs2Of(inst uint32) uint32    { return (inst >> 20) & 0x1F }
func f7Of(inst uint32) uint32     { return (inst >> 25) & 0x7F }

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

func immI(inst uint32) int32 { return signExtend(inst>>20, 12) }

func immS(inst uint32) int32 {
	low := (inst >> 7) & 0x1F
	hi := (inst >> 25) & 0x7F
	return signExtend((hi<<5)|low, 12)
}

func immB(inst uint32) int32 {
	// [12|10:5|4:1|11] << 1
	imm := ((inst>>31)&1)<<12 |
		((inst>>25)&0x3F)<<5 |
		((inst>>8)&0xF)<<1 |
		((inst>>7)&1)<<11
	return signExtend(imm, 13)
}

func immU(inst uint32) int32 { return int32(inst & 0xFFFFF000) }

func immJ(inst uint32) int32 {
	// [20|10:1|11|19:12] << 1
	imm := ((inst>>31)&1)<<20 |
		((inst>>21)&0x3FF)<<1 |
		((inst>>20)&1)<<11 |
		((inst>>12)&0xFF)<<12
	return signExtend(imm, 21)
}

var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var loadNames = map[uint32]string{0: "lb", 1: "lh", 2: "lw", 4: "lbu", 5: "lhu"}
var storeNames = map[uint32]string{0: "sb", 1: "sh", 2: "sw"}
var branchNames = map[uint32]string{0: "beq", 1: "bne", 4: "blt", 5: "bge", 6: "bltu", 7: "bgeu"}
var csrNames = map[uint32]string{1: "csrrw", 2: "csrrs", 3: "csrrc", 5: "csrrwi", 6: "csrrsi", 7: "csrrci"}
var mulNames = map[uint32]string{0: "mul", 1: "mulh", 2: "mulhsu", 3: "mulhu", 4: "div", 5: "divu", 6: "rem", 7: "remu"}
var amoNames = map[uint32]string{
	0x02: "lr.w", 0x03: "sc.w", 0x01: "amoswap.w", 0x00: "amoadd.w",
	0x04: "amoxor.w", 0x0C: "amoand.w", 0x08: "amoor.w",
	0x10: "amomin.w", 0x14: "amomax.w", 0x18: "amominu.w", 0x1C: "amomaxu.w",
}

// disasm renders one instruction for the trace output. It covers the
// implemented RV32IMA_Zicsr set; anything else comes out as .word.
func disasm(inst uint32) string {
	rd := regNames[rdOf(inst)]
	rs1 := regNames[rs1Of(inst)]
	rs2 := regNames[rs2Of(inst)]

	switch opcodeOf(inst) {
	case 0x37:
		return fmt.Sprintf("lui %s, %#x", rd, uint32(immU(inst))>>12)
	case 0x17:
		return fmt.Sprintf("auipc %s, %#x", rd, uint32(immU(inst))>>12)
	case 0x6F:
		return fmt.Sprintf("jal %s, %d", rd, immJ(inst))
	case 0x67:
		return fmt.Sprintf("jalr %s, %d(%s)", rd, immI(inst), rs1)
	case 0x63:
		if name, ok := branchNames[f3Of(inst)]; ok {
			return fmt.Sprintf("%s %s, %s, %d", name, rs1, rs2, immB(inst))
		}
	case 0x03:
		if name, ok := loadNames[f3Of(inst)]; ok {
			return fmt.Sprintf("%s %s, %d(%s)", name, rd, immI(inst), rs1)
		}
	case 0x23:
		if name, ok := storeNames[f3Of(inst)]; ok {
			return fmt.Sprintf("%s %s, %d(%s)", name, rs2, immS(inst), rs1)
		}
	case 0x13:
		switch f3Of(inst) {
		case 0:
			return fmt.Sprintf("addi %s, %s, %d", rd, rs1, immI(inst))
		case 1:
			return fmt.Sprintf("slli %s, %s, %d", rd, rs1, immI(inst)&0x1F)
		case 2:
			return fmt.Sprintf("slti %s, %s, %d", rd, rs1, immI(inst))
		case 3:
			return fmt.Sprintf("sltiu %s, %s, %d", rd, rs1, immI(inst))
		case 4:
			return fmt.Sprintf("xori %s, %s, %d", rd, rs1, immI(inst))
		case 5:
			if f7Of(inst) == 0x20 {
				return fmt.Sprintf("srai %s, %s, %d", rd, rs1, immI(inst)&0x1F)
			}
			return fmt.Sprintf("srli %s, %s, %d", rd, rs1, immI(inst)&0x1F)
		case 6:
			return fmt.Sprintf("ori %s, %s, %d", rd, rs1, immI(inst))
		case 7:
			return fmt.Sprintf("andi %s, %s, %d", rd, rs1, immI(inst))
		}
	case 0x33:
		var name string
		if f7Of(inst) == 1 {
			name = mulNames[f3Of(inst)]
		} else {
			switch f3Of(inst) {
			case 0:
				if f7Of(inst) == 0x20 {
					name = "sub"
				} else {
					name = "add"
				}
			case 1:
				name = "sll"
			case 2:
				name = "slt"
			case 3:
				name = "sltu"
			case 4:
				name = "xor"
			case 5:
				if f7Of(inst) == 0x20 {
					name = "sra"
				} else {
					name = "srl"
				}
			case 6:
				name = "or"
			case 7:
				name = "and"
			}
		}
		if name != "" {
			return fmt.Sprintf("%s %s, %s, %s", name, rd, rs1, rs2)
		}
	case 0x2F:
		if name, ok := amoNames[f7Of(inst)>>2]; ok && f3Of(inst) == 2 {
			return fmt.Sprintf("%s %s, %s, (%s)", name, rd, rs2, rs1)
		}
	case 0x0F:
		if f3Of(inst) == 1 {
			return "fence.i"
		}
		return "fence"
	case 0x73:
		if f3Of(inst) == 0 {
			switch inst >> 20 {
			case 0:
				return "ecall"
			case 1:
				return "ebreak"
			case 0x302:
				return "mret"
			case 0x105:
				return "wfi"
			}
		}
		if name, ok := csrNames[f3Of(inst)]; ok {
			return fmt.Sprintf("%s %s, %#x, %s", name, rd, inst>>20, rs1)
		}
	}
	return fmt.Sprintf(".word %#08x", inst)
}
