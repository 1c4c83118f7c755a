package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateJobName = errors.New("duplicate job name")
	ErrUnknownSoftware  = errors.New("software not in catalog")
	ErrMissingName      = errors.New("matrix entry has neither name nor descriptor")
	ErrInvalidMatrix    = errors.New("invalid job matrix")
)

// DuplicateNameError lists job names that occur more than once, with the
// count of occurrences.
type DuplicateNameError struct {
	Names  []string
	Counts map[string]int
}

func (e *DuplicateNameError) Error() string {
	parts := make([]string, 0, len(e.Names))
	for _, n := range e.Names {
		parts = append(parts, fmt.Sprintf("%s (x%d)", n, e.Counts[n]))
	}
	return fmt.Sprintf("%s: %s", ErrDuplicateJobName, strings.Join(parts, ", "))
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateJobName
}

// CatalogMiss is one descriptor entry the catalog does not list.
type CatalogMiss struct {
	Key      string
	Software Software
}

// UnknownSoftwareError collects the catalog misses of a single job.
type UnknownSoftwareError struct {
	Job    string
	Misses []CatalogMiss
}

func (e *UnknownSoftwareError) Error() string {
	parts := make([]string, 0, len(e.Misses))
	for _, m := range e.Misses {
		parts = append(parts, fmt.Sprintf("%s=%s@%s", m.Key, m.Software.Name, m.Software.Version))
	}
	return fmt.Sprintf("job %s: %s: %s", e.Job, ErrUnknownSoftware, strings.Join(parts, ", "))
}

func (e *UnknownSoftwareError) Unwrap() error {
	return ErrUnknownSoftware
}
