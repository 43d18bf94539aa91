package sysfs

import (
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/mutker/raplsim/internal/errors"
	"codeberg.org/mutker/raplsim/internal/logger"
	"codeberg.org/mutker/raplsim/internal/rapl"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644

	nameFile      = "name"
	energyFile    = "energy_uj"
	maxEnergyFile = "max_energy_range_uj"
)

// Writer materializes the simulated powercap tree under a base
// directory. Domain directories and their static files are created
// lazily on first sight; only energy_uj is rewritten afterwards.
type Writer struct {
	base    string
	created map[int]bool
}

func NewWriter(base string) *Writer {
	return &Writer{
		base:    base,
		created: make(map[int]bool),
	}
}

// Reset removes any pre-existing tree and recreates the empty root.
// Startup-time only; stale domains from a previous run would otherwise
// survive next to the live ones.
func (w *Writer) Reset() error {
	errFactory := errors.New()

	if err := os.RemoveAll(w.base); err != nil {
		return errFactory.Wrap(ErrResetFailed, err)
	}
	if err := os.MkdirAll(w.base, defaultDirPerm); err != nil {
		return errFactory.Wrap(ErrResetFailed, err)
	}

	logger.Debug().Str("base", w.base).Msg("Simulated tree reset")

	return nil
}

// EnsureDomain creates the domain directory with its static name and
// max_energy_range_uj files. Idempotent: once a domain's structure
// exists the call is a no-op.
func (w *Writer) EnsureDomain(d *rapl.Domain, maxEnergyRange int64) error {
	if w.created[d.Index] {
		return nil
	}

	errFactory := errors.New()
	dir := filepath.Join(w.base, d.DirName())

	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return errFactory.Wrap(ErrCreateFailed, err)
	}

	// Static files are written once per process; an existing file from a
	// previous run is simply overwritten with identical content.
	name := d.Label() + "\n"
	if err := os.WriteFile(filepath.Join(dir, nameFile), []byte(name), defaultFilePerm); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	ceiling := fmt.Sprintf("%d\n", maxEnergyRange)
	if err := os.WriteFile(filepath.Join(dir, maxEnergyFile), []byte(ceiling), defaultFilePerm); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	w.created[d.Index] = true
	logger.Debug().Str("dir", dir).Msg("Domain structure created")

	return nil
}

// WriteEnergy overwrites the domain's energy_uj file with the current
// counter value. Called unconditionally every tick.
func (w *Writer) WriteEnergy(d *rapl.Domain) error {
	errFactory := errors.New()

	path := filepath.Join(w.base, d.DirName(), energyFile)
	content := fmt.Sprintf("%d\n", d.Energy)

	if err := os.WriteFile(path, []byte(content), defaultFilePerm); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	return nil
}
