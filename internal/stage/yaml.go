package stage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// personaFile is the on-disk shape of a persona override file.
type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadFromYAML reads persona overrides from a YAML file and registers them,
// replacing the built-in persona for each listed stage. Stages not listed
// keep their built-in persona.
func (r *DefaultRegistry) LoadFromYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read persona file: %w", err)
	}

	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse persona file: %w", err)
	}

	for _, p := range file.Personas {
		if err := r.Register(p); err != nil {
			return fmt.Errorf("persona for stage %q: %w", p.Stage, err)
		}
	}

	return nil
}
