package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/gridswap/internal/grid"
)

// Action is a pointer event in a script.
type Action string

const (
	ActionPress   Action = "press"
	ActionMove    Action = "move"
	ActionRelease Action = "release"
	ActionTick    Action = "tick"
	ActionCancel  Action = "cancel"
)

// Step is one timed pointer event. Press, move and release target either
// the centre of Item ([section, item]) or an explicit Point.
type Step struct {
	At     time.Duration `yaml:"at"`
	Action Action        `yaml:"action"`
	Item   *[2]int       `yaml:"item,omitempty"`
	Point  *grid.Point   `yaml:"point,omitempty"`
}

// Expect is the outcome a script asserts.
type Expect struct {
	Trace    []string   `yaml:"trace,omitempty"`
	Sections [][]string `yaml:"sections,omitempty"`
}

// Script is a recorded pointer session.
type Script struct {
	Name     string   `yaml:"name"`
	Sections []int    `yaml:"sections,omitempty"` // Overrides grid.sections from the config.
	Locked   [][2]int `yaml:"locked,omitempty"`
	Steps    []Step   `yaml:"steps"`
	Expect   *Expect  `yaml:"expect,omitempty"`
}

// LoadFile reads and validates a script.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a script, rejecting unknown keys.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("script is empty")
		}
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks step ordering and targets.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script has no steps")
	}
	for i, n := range s.Sections {
		if n <= 0 {
			return fmt.Errorf("sections[%d] must be > 0, got %d", i, n)
		}
	}

	var last time.Duration
	for i, step := range s.Steps {
		if step.At < 0 {
			return fmt.Errorf("steps[%d]: at must be >= 0", i)
		}
		if step.At < last {
			return fmt.Errorf("steps[%d]: at %s is before the previous step (%s)", i, step.At, last)
		}
		last = step.At

		switch step.Action {
		case ActionPress, ActionMove, ActionRelease:
			if (step.Item == nil) == (step.Point == nil) {
				return fmt.Errorf("steps[%d]: %s needs exactly one of item or point", i, step.Action)
			}
		case ActionTick, ActionCancel:
			if step.Item != nil || step.Point != nil {
				return fmt.Errorf("steps[%d]: %s takes no target", i, step.Action)
			}
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
	}
	return nil
}
