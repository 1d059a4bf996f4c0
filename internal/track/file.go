package track

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"racing-line-optimizer/internal/common"
)

var ErrInvalidTrack = errors.New("invalid track file")

// File is the on-disk description of a track. JSON documents are accepted
// as well since they parse as YAML.
type File struct {
	Name     string        `yaml:"name" json:"name"`
	Width    float64       `yaml:"width" json:"width"`       // full track width (m)
	Friction float64       `yaml:"friction" json:"friction"` // tire/road coefficient
	Points   []common.Vec2 `yaml:"points" json:"points"`
}

// Defaults applied when a file omits width or friction.
const (
	DefaultWidth    = 12.0
	DefaultFriction = 0.9
)

// LoadFile reads and validates a track description.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFile(data)
}

// ParseFile decodes a YAML (or JSON) track description.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrack, err)
	}
	if f.Width == 0 {
		f.Width = DefaultWidth
	}
	if f.Friction == 0 {
		f.Friction = DefaultFriction
	}
	if f.Width < 0 || f.Friction < 0 {
		return nil, fmt.Errorf("%w: width and friction must be positive", ErrInvalidTrack)
	}
	if err := Validate(f.Points); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrack, err)
	}
	return &f, nil
}

// Save writes the track as YAML.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
