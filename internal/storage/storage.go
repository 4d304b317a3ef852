package storage

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/OCharnyshevich/worldgen/internal/config"
	"github.com/OCharnyshevich/worldgen/internal/world"
	"github.com/OCharnyshevich/worldgen/pkg/world/block"
	"github.com/OCharnyshevich/worldgen/pkg/world/coord"
)

// Storage handles file-based persistence for the world's generator
// config, its manifest and block overrides. Generated chunks are never
// written; they are reproduced from the seed.
type Storage struct {
	dir      string
	log      *slog.Logger
	readOnly bool
}

// ErrReadOnly is returned by writes to a storage opened with Open.
var ErrReadOnly = errors.New("storage: opened read-only")

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "world"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Storage{dir: dir, log: log}, nil
}

// Open returns a read-only Storage rooted at dir. Nothing is created on
// disk; a missing dir reads as an empty world.
func Open(dir string, log *slog.Logger) *Storage {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Storage{dir: dir, log: log, readOnly: true}
}

// Dir returns the storage root.
func (s *Storage) Dir() string { return s.dir }

// ReadOnly reports whether the storage was opened with Open.
func (s *Storage) ReadOnly() bool { return s.readOnly }

// LoadConfig reads the config the world was created with from
// world/config.json, returning nil if there is none.
func (s *Storage) LoadConfig() (*config.Config, error) {
	path := filepath.Join(s.dir, "world", "config.json")
	cfg := config.DefaultConfig()
	found, err := s.readJSON(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if !found {
		return nil, nil
	}
	s.log.Debug("loaded world config", "path", path)
	return cfg, nil
}

// SaveConfig writes cfg to world/config.json atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	return s.atomicWriteJSON(filepath.Join(s.dir, "world", "config.json"), cfg)
}

// LoadManifest reads world/manifest.json, returning nil if there is none.
func (s *Storage) LoadManifest() (*Manifest, error) {
	var m Manifest
	found, err := s.readJSON(filepath.Join(s.dir, "world", "manifest.json"), &m)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &m, nil
}

// SaveManifest writes m to world/manifest.json atomically.
func (s *Storage) SaveManifest(m *Manifest) error {
	return s.atomicWriteJSON(filepath.Join(s.dir, "world", "manifest.json"), m)
}

// LoadWorld reads overrides.json and bulk-loads block overrides into the world.
func (s *Storage) LoadWorld(w *world.World) error {
	var wd WorldData
	found, err := s.readJSON(filepath.Join(s.dir, "world", "overrides.json"), &wd)
	if err != nil {
		return fmt.Errorf("world overrides: %w", err)
	}
	if !found {
		return nil
	}

	overrides := make(map[coord.AbsBlockPos]block.Entry, len(wd.Overrides))
	for _, o := range wd.Overrides {
		overrides[coord.AbsBlockPos{X: o.X, Y: o.Y, Z: o.Z}] = block.Entry{ID: o.Block, Meta: o.Meta}
	}

	w.LoadOverrides(overrides)
	s.log.Info("loaded world overrides", "count", len(overrides))
	return nil
}

// SaveWorld writes all block overrides to overrides.json atomically, sorted
// by position so unchanged worlds produce identical files.
func (s *Storage) SaveWorld(w *world.World) error {
	var wd WorldData
	w.ForEachOverride(func(pos coord.AbsBlockPos, e block.Entry) {
		wd.Overrides = append(wd.Overrides, BlockOverride{
			X: pos.X, Y: pos.Y, Z: pos.Z, Block: e.ID, Meta: e.Meta,
		})
	})
	slices.SortFunc(wd.Overrides, func(a, b BlockOverride) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.Z, b.Z), cmp.Compare(a.X, b.X))
	})

	return s.atomicWriteJSON(filepath.Join(s.dir, "world", "overrides.json"), &wd)
}

func (s *Storage) readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// atomicWriteJSON marshals v to JSON and writes it atomically using a temp file + rename.
func (s *Storage) atomicWriteJSON(path string, v any) error {
	if s.readOnly {
		return fmt.Errorf("write %s: %w", path, ErrReadOnly)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
