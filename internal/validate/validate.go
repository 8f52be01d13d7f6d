// Package validate checks and normalizes tool inputs.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"pokedex-mcp/internal/pokemon"
)

// Limits bounds name length and stat values.
type Limits struct {
	MaxNameLength int
	MinStat       int
	MaxStat       int
}

// DefaultLimits mirrors the PokeAPI data ranges.
func DefaultLimits() Limits {
	return Limits{MaxNameLength: 50, MinStat: 0, MaxStat: 255}
}

var namePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Name checks a Pokemon name. It trims whitespace but does not lowercase:
// callers that accept mixed case must Sanitize first.
func Name(raw string, l Limits) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &pokemon.ValidationError{Rule: "empty", Message: "Pokemon name cannot be empty"}
	}
	if !namePattern.MatchString(trimmed) {
		return &pokemon.ValidationError{
			Rule:    "charset",
			Message: "Pokemon name must contain only lowercase letters, numbers, and hyphens",
		}
	}
	max := l.MaxNameLength
	if max <= 0 {
		max = DefaultLimits().MaxNameLength
	}
	if len(trimmed) > max {
		return &pokemon.ValidationError{
			Rule:    "length",
			Message: fmt.Sprintf("Pokemon name is too long (max %d characters)", max),
		}
	}
	return nil
}

// Sanitize produces the canonical key for a name.
func Sanitize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Stats checks that every stat lies within [MinStat, MaxStat].
func Stats(s pokemon.Stats, l Limits) error {
	fields := []struct {
		name  string
		value int
	}{
		{"hp", s.HP},
		{"attack", s.Attack},
		{"defense", s.Defense},
		{"specialAttack", s.SpecialAttack},
		{"specialDefense", s.SpecialDefense},
		{"speed", s.Speed},
	}
	for _, f := range fields {
		if f.value < l.MinStat || f.value > l.MaxStat {
			return &pokemon.ValidationError{
				Rule:    "stat_range",
				Message: fmt.Sprintf("Invalid %s stat: must be a number between %d and %d", f.name, l.MinStat, l.MaxStat),
			}
		}
	}
	return nil
}
