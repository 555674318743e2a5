package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration reads from YAML either as a Go duration string ("90s", "2m") or
// as a bare number of seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!int", "!!float":
		var seconds float64
		if err := node.Decode(&seconds); err != nil {
			return err
		}
		*d = Duration(seconds * float64(time.Second))
		return nil
	default:
		var raw string
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("invalid duration on line %d: %w", node.Line, err)
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		*d = Duration(parsed)
		return nil
	}
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
