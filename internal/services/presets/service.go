// Package presets serves the named weight presets offered to API clients.
package presets

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

// Builtin returns the presets used when no presets file is configured
func Builtin() []models.Preset {
	return []models.Preset{
		{ID: "default", Name: "기본값", Tech: 40, Fund: 60, Description: "일반 투자자용"},
		{ID: "trading", Name: "단기 트레이딩", Tech: 70, Fund: 30, Description: "단타/스윙용"},
		{ID: "value", Name: "가치투자", Tech: 30, Fund: 70, Description: "장기 투자자용"},
		{ID: "balanced", Name: "균형", Tech: 50, Fund: 50, Description: "밸런스형"},
	}
}

type presetsFile struct {
	Presets []models.Preset `yaml:"presets" validate:"required,min=1,dive"`
}

// Service holds the active preset list
type Service struct {
	mu       sync.RWMutex
	presets  []models.Preset
	logger   arbor.ILogger
	validate *validator.Validate
}

// NewService creates the preset service. When path is set the file
// replaces the built-in presets; an invalid file is an error.
func NewService(path string, logger arbor.ILogger) (*Service, error) {
	s := &Service{
		presets:  Builtin(),
		logger:   logger,
		validate: validator.New(),
	}

	if path == "" {
		return s, nil
	}

	if err := s.LoadFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile replaces the active presets with the contents of a YAML file
func (s *Service) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read presets file %s: %w", path, err)
	}

	presets, err := s.parse(data)
	if err != nil {
		return fmt.Errorf("invalid presets file %s: %w", path, err)
	}

	s.mu.Lock()
	s.presets = presets
	s.mu.Unlock()

	s.logger.Info().
		Str("path", path).
		Int("count", len(presets)).
		Msg("Loaded weight presets")

	return nil
}

func (s *Service) parse(data []byte) ([]models.Preset, error) {
	var file presetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(file); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(file.Presets))
	for _, p := range file.Presets {
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate preset id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Tech+p.Fund <= 0 {
			return nil, fmt.Errorf("preset %q has zero total weight", p.ID)
		}
	}
	return file.Presets, nil
}

// List returns a copy of the active presets in file order
func (s *Service) List() []models.Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Preset, len(s.presets))
	copy(out, s.presets)
	return out
}

// Get returns the preset with the given id
func (s *Service) Get(id string) (models.Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.presets {
		if p.ID == id {
			return p, true
		}
	}
	return models.Preset{}, false
}
