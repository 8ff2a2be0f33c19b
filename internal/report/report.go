// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes batch results to YAML files.
package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// Envelope wraps a batch result with the command that produced it.
type Envelope struct {
	Command     string    `yaml:"command"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Result      any       `yaml:"result"`
}

// Write marshals result inside an Envelope and writes it to path.
func Write(path, command string, result any) error {
	env := Envelope{
		Command:     command,
		GeneratedAt: time.Now().UTC(),
		Result:      result,
	}
	data, err := yaml.Marshal(&env)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// Read loads a report written by Write. The result is decoded into result.
func Read(path string, result any) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Command     string    `yaml:"command"`
		GeneratedAt time.Time `yaml:"generated_at"`
		Result      yaml.Node `yaml:"result"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	if err := raw.Result.Decode(result); err != nil {
		return nil, fmt.Errorf("decoding report result: %w", err)
	}
	return &Envelope{Command: raw.Command, GeneratedAt: raw.GeneratedAt, Result: result}, nil
}
