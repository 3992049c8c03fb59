// Package settings persists the user-adjustable lifecycle durations to a YAML file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
)

type document struct {
	Lifecycle lifecycle.Durations `yaml:"lifecycle"`
}

// Store keeps the current durations in memory and mirrors every update to disk.
// An empty path keeps the settings in memory only.
type Store struct {
	mu      sync.RWMutex
	path    string
	current lifecycle.Durations
	logger  *zap.Logger
}

// Open loads settings from path, falling back to the given defaults when the file does not exist.
func Open(path string, fallback lifecycle.Durations, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{path: path, current: fallback.WithDefaults(), logger: logger}
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("settings file not found, using defaults", zap.String("path", path))
			return s, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", path, err)
	}

	loaded := doc.Lifecycle.WithDefaults()
	if err := loaded.Validate(); err != nil {
		logger.Warn("stored durations outside recommended range", zap.Error(err))
	}
	s.current = loaded
	return s, nil
}

// Durations returns the current lifecycle durations.
func (s *Store) Durations() lifecycle.Durations {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates and persists new durations.
func (s *Store) Update(d lifecycle.Durations) (lifecycle.Durations, error) {
	d = d.WithDefaults()
	if err := d.Validate(); err != nil {
		return s.Durations(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if err := s.write(d); err != nil {
			return s.current, err
		}
	}
	s.current = d
	s.logger.Info("lifecycle durations updated",
		zap.Int("pregnancy_days", d.PregnancyDays),
		zap.Int("fattening_days", d.FatteningDays))
	return d, nil
}

func (s *Store) write(d lifecycle.Durations) error {
	raw, err := yaml.Marshal(document{Lifecycle: d})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write settings %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings %s: %w", s.path, err)
	}
	return nil
}
