package video

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SameFile reports whether a and b name the same file, either by their
// absolute paths or, for existing files, by identity (links included).
func SameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}

	statA, err := os.Stat(a)
	if err != nil {
		return false
	}
	statB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(statA, statB)
}

// PartialFile is a temporary sibling of an output file. Encoders write
// to Path; the output itself is only replaced by Commit, so a failed
// render leaves whatever was there before.
type PartialFile struct {
	Path   string
	target string
	done   bool
}

// NewPartialFile creates an empty partial file next to target, keeping
// its extension so ffmpeg picks the same muxer.
func NewPartialFile(target string) (*PartialFile, error) {
	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}
	ext := filepath.Ext(base)

	f, err := os.CreateTemp(dir, "."+strings.TrimSuffix(base, ext)+".partial-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create partial output: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to create partial output: %w", err)
	}
	return &PartialFile{Path: f.Name(), target: target}, nil
}

// Commit moves the partial file over the target.
func (p *PartialFile) Commit() error {
	if p.done {
		return nil
	}
	if err := os.Rename(p.Path, p.target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", p.target, err)
	}
	p.done = true
	return nil
}

// Discard removes the partial file unless it was committed. Safe to defer.
func (p *PartialFile) Discard() {
	if p.done {
		return
	}
	p.done = true
	_ = os.Remove(p.Path)
}
