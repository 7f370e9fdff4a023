// Package config loads lockcheck.toml, the per-module configuration
// naming the generic lock type the analyzer should track (SPEC_FULL.md
// §6.1). Discovery and decoding follow
// vovakirdan-surge/cmd/surge/project_manifest.go's pattern
// (toml.DecodeFile plus meta.IsDefined validation), and the
// nearest-manifest upward walk matches original_source/lockcheck/src/config.rs's load_config (there, "nearest Cargo.toml"; here, "nearest
// go.mod").
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"lockcheck/pkg/lockcheck"
)

// LockEntry is the raw, as-decoded form of one [[locks]] table.
type LockEntry struct {
	Lock         string `toml:"lock"`
	Guard        string `toml:"guard"`
	Constructor  string `toml:"constructor"`
	LockMethod   string `toml:"lock_method"`
	UnlockMethod string `toml:"unlock_method"`
}

// File is the decoded form of lockcheck.toml.
type File struct {
	Locks []LockEntry `toml:"locks"`
}

// Manifest is a located and loaded lockcheck.toml plus the module root
// it was found next to.
type Manifest struct {
	Path string
	Root string
	File File
}

// Find walks upward from startDir to the nearest directory containing
// go.mod and returns the lockcheck.toml beside it, the Go analog of
// original_source's "walk current_dir.ancestors() for the nearest
// Cargo.toml, then load a sibling lockcheck.toml." Returns ok=false,
// err=nil if that directory has no lockcheck.toml (directories further
// up are not searched) or if no go.mod is found before reaching the
// filesystem root.
func Find(startDir string) (path string, root string, ok bool, err error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", "", false, fmt.Errorf("config: %w", err)
	}
	for {
		modPath := filepath.Join(dir, "go.mod")
		tomlPath := filepath.Join(dir, "lockcheck.toml")
		if _, err := os.Stat(modPath); err == nil {
			if _, err := os.Stat(tomlPath); err == nil {
				return tomlPath, dir, true, nil
			}
			return "", "", false, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", false, nil
		}
		dir = parent
	}
}

// Load decodes the lockcheck.toml at path and validates that every
// [[locks]] entry has all five required fields.
func Load(path string) (*File, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("locks") {
		return nil, fmt.Errorf("%s: no [[locks]] entries defined", path)
	}
	for i := range f.Locks {
		if err := validateEntry(path, i, f.Locks[i]); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

func validateEntry(path string, idx int, e LockEntry) error {
	required := map[string]string{
		"lock":          e.Lock,
		"guard":         e.Guard,
		"constructor":   e.Constructor,
		"lock_method":   e.LockMethod,
		"unlock_method": e.UnlockMethod,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s: [[locks]] entry %d: missing %s", path, idx, field)
		}
	}
	return nil
}

// Targets converts the decoded file into the lockcheck package's
// TargetConfig shape.
func (f *File) Targets() []lockcheck.TargetConfig {
	out := make([]lockcheck.TargetConfig, 0, len(f.Locks))
	for _, e := range f.Locks {
		out = append(out, lockcheck.TargetConfig{
			Lock:         e.Lock,
			Guard:        e.Guard,
			Constructor:  e.Constructor,
			LockMethod:   e.LockMethod,
			UnlockMethod: e.UnlockMethod,
		})
	}
	return out
}
