// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package machine

import (
	"debug/elf"
	"fmt"
	"os"
)

// LoadELF maps PT_LOAD segments into RAM at their vaddr (identity
// physical mapping) and returns the entry address.
func LoadELF(path string, ram *RAM) (uint32, error) {
	f, err := elf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	for _, ph := range f.Progs {
		if ph.Type != elf.PT_LOAD {
			continue
		}
		buf := make([]byte, ph.Memsz)
		if ph.Filesz > 0 {
			if _, err := ph.ReadAt(buf[:ph.Filesz], 0); err != nil {
				return 0, fmt.Errorf("read segment: %w", err)
			}
		}
		// remainder past Filesz stays zero
		if err := ram.WriteBytes(uint32(ph.Vaddr), buf); err != nil {
			return 0, fmt.Errorf("map segment @%08X: %w", uint32(ph.Vaddr), err)
		}
	}

	return uint32(f.Entry), nil
}

// LoadFlat places a raw binary image at base.
func LoadFlat(path string, ram *RAM, base uint32) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := ram.WriteBytes(base, data); err != nil {
		return fmt.Errorf("load %s @%08X: %w", path, base, err)
	}
	return nil
}
