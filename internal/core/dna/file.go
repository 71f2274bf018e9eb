package dna

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a ruleset from a YAML file. A missing file is not an
// error: the built-in default ruleset is returned so a fresh checkout
// works without a DNA repository.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read DNA file: %w", err)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse DNA file %s: %w", path, err)
	}

	return &rs, nil
}

// SaveFile validates a ruleset and writes it to path as YAML, stamping
// LastUpdated. Invalid rulesets are rejected before anything touches disk.
func SaveFile(path string, rs *Ruleset) error {
	if err := rs.Validate(); err != nil {
		return err
	}

	rs.LastUpdated = time.Now().Format("2006-01-02")

	data, err := yaml.Marshal(rs)
	if err != nil {
		return fmt.Errorf("encode DNA file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write DNA file %s: %w", path, err)
	}

	return nil
}
