package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateValidator(t *testing.T) {
	v := NewTemplateValidator(16)

	assert.NoError(t, v.Validate([]byte("%PDF-1.4 ok")))
	assert.Error(t, v.Validate(nil), "empty")
	assert.Error(t, v.Validate([]byte("<html></html>")), "wrong header")
	assert.Error(t, v.Validate([]byte("%PDF-1.4 but far too large")), "over limit")
}

func TestTemplateValidator_NoLimit(t *testing.T) {
	v := NewTemplateValidator(0)
	assert.NoError(t, v.Validate([]byte("%PDF-1.7 arbitrarily long content here")))
}
