// Package loader provides ROM loading for CHIP-8 programs.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sarchlab/c8sim/emu"
)

// ErrEmptyROM is returned for a ROM with no bytes.
var ErrEmptyROM = errors.New("empty rom")

// Program represents a loaded ROM ready for execution.
type Program struct {
	// Name identifies the ROM, usually its file name.
	Name string
	// Data contains the raw program bytes.
	Data []byte
	// EntryPoint is the address where the ROM is loaded and execution
	// begins.
	EntryPoint uint16
}

// Load reads a ROM file and returns a Program ready for loading into the
// emulator's memory.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROM file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadReader(filepath.Base(path), f)
}

// LoadFS reads a ROM from a file system, such as an embed.FS.
func LoadFS(fsys fs.FS, name string) (*Program, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROM file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadReader(filepath.Base(name), f)
}

// LoadReader reads a ROM from r. It never reads more than one byte past
// the largest ROM that fits in memory.
func LoadReader(name string, r io.Reader) (*Program, error) {
	data, err := io.ReadAll(io.LimitReader(r, emu.MaxROMSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM %s: %w", name, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyROM, name)
	}

	if len(data) > emu.MaxROMSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes",
			emu.ErrROMTooLarge, name, emu.MaxROMSize)
	}

	return &Program{
		Name:       name,
		Data:       data,
		EntryPoint: emu.ProgramStart,
	}, nil
}
