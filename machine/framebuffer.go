// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Framebuffer geometry: 640x400, 4 bits per pixel through a 16-slot
// palette, vmem exposed one word at a time through a register window.
const (
	VmemWords    = 32768
	PaletteSlots = 16

	PixelPerWord = 8
	BitsPerPixel = 4
	vmemWidth    = 32
	pixelMask    = 0b11110000000000000000000000000000

	ScreenWidth  = 640
	ScreenHeight = 400
	WordsPerLine = ScreenWidth / PixelPerWord
)

// Register offsets within the framebuffer MMIO window.
const (
	fbRegRA  = 0x00 // vmem read address
	fbRegWA  = 0x04 // vmem write address
	fbRegIO  = 0x08 // vmem data, autoincrementing
	fbRegPS  = 0x0C // palette slot select
	fbRegPD  = 0x10 // palette data
	fbRegCTL = 0x14 // control / vsync flag
)

// Framebuffer is an optional bus device backing an ebiten image. The
// machine runs headless when it is never attached.
type Framebuffer struct {
	img         *ebiten.Image
	palette     [PaletteSlots]color.Color
	readAddr    uint32
	writeAddr   uint32
	paletteSlot uint32
	vmem        [VmemWords]uint32
	readCount   int
}

func NewFramebuffer() *Framebuffer {
	f := &Framebuffer{img: ebiten.NewImage(ScreenWidth, ScreenHeight)}
	for i := 0; i < PaletteSlots; i++ {
		f.palette[i] = color.RGBA{0, 0, 0, 0}
	}
	return f
}

// Image is the rendered screen, drawn by the window front end.
func (f *Framebuffer) Image() *ebiten.Image {
	return f.img
}

func (f *Framebuffer) AddrSpace() (uint32, uint32) {
	return FBBase, FBBase + FBSize
}

func (f *Framebuffer) Load(addr uint32, width int) (uint32, error) {
	switch addr - FBBase {
	case fbRegRA:
		return f.readAddr, nil
	case fbRegWA:
		return f.writeAddr, nil
	case fbRegIO:
		return f.readVmem(), nil
	case fbRegPS:
		return f.paletteSlot, nil
	case fbRegCTL:
		return f.readCtl(), nil
	}
	return 0, nil
}

func (f *Framebuffer) Store(addr uint32, width int, v uint32) error {
	switch addr - FBBase {
	case fbRegRA:
		f.readAddr = v
	case fbRegWA:
		f.writeAddr = v
	case fbRegIO:
		f.writeVmem(v)
	case fbRegPS:
		f.paletteSlot = v
	case fbRegPD:
		f.writePalette(v)
	}
	return nil
}

func (f *Framebuffer) readVmem() uint32 {
	v := f.vmem[f.readAddr&(VmemWords-1)]
	f.readAddr++
	return v
}

func (f *Framebuffer) writeVmem(v uint32) {
	vaddr := f.writeAddr & (VmemWords - 1)
	f.vmem[vaddr] = v

	y := vaddr / WordsPerLine
	x := vaddr % WordsPerLine * PixelPerWord

	for i := 0; i < PixelPerWord; i++ {
		pixel := (v & pixelMask) >> (vmemWidth - BitsPerPixel)
		v = v << BitsPerPixel
		f.img.Set(int(x), int(y), f.palette[pixel])
		x++
	}

	f.writeAddr++
}

func (f *Framebuffer) writePalette(v uint32) {
	// 4 bits per color channel, scaled to 0-255
	r := uint8((v & 0b111100000000) >> 8 << 4)
	g := uint8((v & 0b000011110000) >> 4 << 4)
	b := uint8((v & 0b000000001111) << 4)

	f.palette[f.paletteSlot&(PaletteSlots-1)] = color.RGBA{r, g, b, 0}
}

func (f *Framebuffer) readCtl() uint32 {
	if f.readCount == 0 {
		f.readCount = 1000
		return 0
	}
	f.readCount--
	return 1
}
