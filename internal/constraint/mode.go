package constraint

import (
	"errors"
	"fmt"

	"github.com/bagelcount/bagelcount/internal/model"
)

// ErrInvalidMode is returned for unknown mode strings.
var ErrInvalidMode = errors.New("invalid constraint mode")

// Mode controls what happens when a role of a constraint is violated.
type Mode string

const (
	// ModeBlocking rejects mutations that violate the role.
	ModeBlocking Mode = "blocking"
	// ModeWarning attaches the violation as a warning.
	ModeWarning Mode = "warning"
	// ModeDisabled suppresses the violation.
	ModeDisabled Mode = "disabled"
)

// ParseMode validates s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeBlocking, ModeWarning, ModeDisabled:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so configs fail on typos.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// RoleModes holds the mode for each side of a parent/child constraint.
type RoleModes struct {
	Parent Mode `yaml:"parent" json:"parent"`
	Child  Mode `yaml:"child" json:"child"`
}

func (r RoleModes) forRole(role model.Role) Mode {
	var m Mode
	if role == model.RoleParent {
		m = r.Parent
	} else {
		m = r.Child
	}
	if m == "" {
		return ModeWarning
	}
	return m
}

// Config maps constraint names to their role modes. Constraints missing from
// the map run with both roles in warning mode.
type Config map[model.ConstraintName]RoleModes

// DefaultConfig returns warning mode for every known constraint.
func DefaultConfig() Config {
	return Config{
		model.ParentChildrenSum: {Parent: ModeWarning, Child: ModeWarning},
	}
}

// Modes returns the role modes for name.
func (c Config) Modes(name model.ConstraintName) RoleModes {
	if m, ok := c[name]; ok {
		return m
	}
	return RoleModes{Parent: ModeWarning, Child: ModeWarning}
}

// Clone copies the config so callers cannot change a captured value.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
