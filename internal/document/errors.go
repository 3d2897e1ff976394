package document

import (
	"fmt"
	"strings"
)

// ValidationError reports the required fields a record is missing. Rendering
// never starts once one is raised; the HTTP layer maps it to a 400.
type ValidationError struct {
	Kind    string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s incomplet, champs manquants : %s", e.Kind, strings.Join(e.Missing, ", "))
}

// checklist accumulates missing required fields for one record kind.
type checklist struct {
	kind    string
	missing []string
}

func (c *checklist) require(name string, present bool) {
	if !present {
		c.missing = append(c.missing, name)
	}
}

func (c *checklist) requireString(name, value string) {
	c.require(name, strings.TrimSpace(value) != "")
}

func (c *checklist) err() error {
	if len(c.missing) == 0 {
		return nil
	}
	return &ValidationError{Kind: c.kind, Missing: c.missing}
}
