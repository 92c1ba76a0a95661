// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

// Machine-mode CSR addresses.
const (
	CSRMVendorID = 0xF11
	CSRMArchID   = 0xF12
	CSRMImpID    = 0xF13
	CSRMHartID   = 0xF14

	CSRCycle = 0xC00

	CSRMStatus  = 0x300
	CSRMISA     = 0x301
	CSRMIE      = 0x304
	CSRMTVec    = 0x305
	CSRMScratch = 0x340
	CSRMEPC     = 0x341
	CSRMCause   = 0x342
	CSRMTVal    = 0x343
	CSRMIP      = 0x344
)

const (
	mstatusMIE  = 1 << 3
	mstatusMPIE = 1 << 7
	mstatusMPP  = 0b11 << 11

	mieMTIE = 1 << 7
	mipMTIP = 1 << 7
)

type csr struct {
	value    uint32
	writable bool
}

// CSRFile holds the implemented machine-mode control and status
// registers. Unimplemented CSRs read as zero and ignore writes.
type CSRFile struct {
	csrs map[uint32]*csr
}

func NewCSRFile() *CSRFile {
	f := &CSRFile{csrs: make(map[uint32]*csr)}
	for _, e := range []struct {
		addr, value uint32
		writable    bool
	}{
		{CSRMVendorID, 0xFF0FF0FF, false},
		{CSRMArchID, 0, false},
		{CSRMImpID, 0, false},
		{CSRMHartID, 0, false},
		{CSRCycle, 0, false},
		{CSRMStatus, 0, true},
		{CSRMISA, 0x40401101, true}, // XLEN=32, IMA+X
		{CSRMIE, 0, true},
		{CSRMTVec, 0, true},
		{CSRMScratch, 0, true},
		{CSRMEPC, 0, true},
		{CSRMCause, 0, true},
		{CSRMTVal, 0, true},
		{CSRMIP, 0, true},
	} {
		f.csrs[e.addr] = &csr{e.value, e.writable}
	}
	return f
}

func (f *CSRFile) Read(addr uint32) uint32 {
	if c, ok := f.csrs[addr]; ok {
		return c.value
	}
	return 0
}

func (f *CSRFile) Write(addr, v uint32) {
	if c, ok := f.csrs[addr]; ok && c.writable {
		c.value = v
	}
}

func (f *CSRFile) CountCycle() {
	f.csrs[CSRCycle].value++
}

// DisableIRQ saves MIE into MPIE and clears MIE, the entry half of the
// trap dance.
func (f *CSRFile) DisableIRQ() {
	c := f.csrs[CSRMStatus]
	if c.value&mstatusMIE != 0 {
		c.value |= mstatusMPIE
	} else {
		c.value &^= mstatusMPIE
	}
	c.value &^= mstatusMIE
}

// EnableIRQ restores MIE from MPIE and sets MPIE, the mret half.
func (f *CSRFile) EnableIRQ() {
	c := f.csrs[CSRMStatus]
	if c.value&mstatusMPIE != 0 {
		c.value |= mstatusMIE
	} else {
		c.value &^= mstatusMIE
	}
	c.value |= mstatusMPIE
}

func (f *CSRFile) MPP() uint32 {
	return (f.csrs[CSRMStatus].value & mstatusMPP) >> 11
}

func (f *CSRFile) SetMPP(mode uint32) {
	c := f.csrs[CSRMStatus]
	c.value = (c.value &^ mstatusMPP) | ((mode & 0b11) << 11)
}

func (f *CSRFile) SetMTIP(pending bool) {
	c := f.csrs[CSRMIP]
	if pending {
		c.value |= mipMTIP
	} else {
		c.value &^= mipMTIP
	}
}

// TimerPending reports whether a machine timer interrupt should be
// taken: MTIP set, MTIE enabled, global MIE enabled.
func (f *CSRFile) TimerPending() bool {
	return f.csrs[CSRMIP].value&mipMTIP != 0 &&
		f.csrs[CSRMIE].value&mieMTIE != 0 &&
		f.csrs[CSRMStatus].value&mstatusMIE != 0
}
