// Package pdf holds cross-cutting PDF checks shared by the generation
// pipeline.
package pdf

import (
	"bytes"
	"fmt"
)

// TemplateValidator rejects template bytes that cannot possibly be usable
// before any parsing is attempted.
type TemplateValidator struct {
	maxSize int64
}

// NewTemplateValidator creates a validator with the specified size limit.
func NewTemplateValidator(maxSize int64) *TemplateValidator {
	return &TemplateValidator{maxSize: maxSize}
}

// Validate checks that b looks like a PDF under the size limit.
func (v *TemplateValidator) Validate(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("template is empty")
	}
	if v.maxSize > 0 && int64(len(b)) > v.maxSize {
		return fmt.Errorf("template too large: %d bytes (max: %d bytes)", len(b), v.maxSize)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		return fmt.Errorf("template is not a PDF")
	}
	return nil
}
