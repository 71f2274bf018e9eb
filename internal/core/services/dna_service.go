package services

import (
	"log"
	"sync"

	"dna-erp-po/internal/core/dna"
)

// DNAService owns the loaded DNA ruleset. The ruleset is replaced
// wholesale on save or reload; readers always get the snapshot that was
// current when their request started, never a half-updated one.
type DNAService struct {
	path string

	mu      sync.RWMutex
	current *dna.Ruleset
}

// NewDNAService loads the ruleset from the DNA file at path. A missing
// file yields the built-in defaults; a malformed one is a boot error.
func NewDNAService(path string) (*DNAService, error) {
	rs, err := dna.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := rs.Validate(); err != nil {
		// The resolver tolerates malformed bands, so a bad DNA file
		// degrades instead of blocking boot. Flag it.
		log.Printf("⚠️ DNA ruleset failed validation, serving it leniently: %v", err)
	}

	log.Printf("✅ DNA ruleset loaded [version: %s, bands: %d]", rs.Version, len(rs.Thresholds))

	return &DNAService{path: path, current: rs}, nil
}

// Ruleset returns the current ruleset snapshot. Callers treat it as
// immutable for the duration of their request.
func (s *DNAService) Ruleset() *dna.Ruleset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates the new ruleset, writes it to the DNA file, and swaps it
// in as the current snapshot. Invalid rulesets never reach disk or
// in-flight requests.
func (s *DNAService) Save(rs *dna.Ruleset) error {
	if err := dna.SaveFile(s.path, rs); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = rs
	s.mu.Unlock()

	log.Printf("✅ DNA ruleset saved [version: %s]", rs.Version)
	return nil
}

// Reload re-reads the DNA file, picking up edits made outside the API
func (s *DNAService) Reload() (*dna.Ruleset, error) {
	rs, err := dna.LoadFile(s.path)
	if err != nil {
		return nil, err
	}

	if err := rs.Validate(); err != nil {
		log.Printf("⚠️ reloaded DNA ruleset failed validation, serving it leniently: %v", err)
	}

	s.mu.Lock()
	s.current = rs
	s.mu.Unlock()

	log.Printf("✅ DNA ruleset reloaded [version: %s]", rs.Version)
	return rs, nil
}

// Path returns the DNA file location (surfaced in the DNA endpoint)
func (s *DNAService) Path() string {
	return s.path
}
