// Package fill populates AcroForm templates with document values. It works
// at the dictionary level so that templates produced by any authoring tool
// can be filled without re-generating appearances ourselves: the viewer is
// asked to rebuild them via NeedAppearances.
//
// Matching runs in three stages. Field names are mapped to semantic keys
// first; if not a single field matched by name, values are assigned to the
// text fields in document order; if the template has no fields at all, the
// values are stamped onto the first page as an overlay.
package fill

import (
	"bytes"
	"fmt"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"
)

// Stats reports what a Fill run did, for logging and response headers.
type Stats struct {
	Fields     int  // form fields discovered in the template
	Matched    int  // fields whose name mapped to a semantic key
	Filled     int  // fields that received a value
	Positional int  // fields filled by the positional fallback
	Overlay    bool // no fields at all, values stamped as an overlay
}

// Engine fills AcroForm templates.
type Engine struct {
	order []string
	log   zerolog.Logger
}

// NewEngine builds an engine. A nil or empty order selects DefaultOrder for
// the positional fallback.
func NewEngine(order []string, log zerolog.Logger) *Engine {
	if len(order) == 0 {
		order = DefaultOrder
	}
	return &Engine{order: order, log: log}
}

// field is one fillable entry of the AcroForm Fields array.
type field struct {
	name string
	typ  string // Tx, Btn, Ch, Sig
	dict types.Dict
}

// Fill populates template with values and returns the filled document.
// Errors mean the template is unusable; callers fall back to classic
// generation rather than failing the request.
func (e *Engine) Fill(template []byte, values Values) ([]byte, Stats, error) {
	var stats Stats

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(template), conf)
	if err != nil {
		return nil, stats, fmt.Errorf("read template: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, stats, fmt.Errorf("ensure page count: %w", err)
	}

	acroForm, fields, err := e.collectFields(ctx)
	if err != nil {
		return nil, stats, err
	}
	stats.Fields = len(fields)

	if len(fields) == 0 {
		out, err := e.overlay(template, values, conf)
		if err != nil {
			return nil, stats, fmt.Errorf("overlay: %w", err)
		}
		stats.Overlay = true
		e.log.Debug().Int("values", len(values)).Msg("template has no form fields, stamped overlay")
		return out, stats, nil
	}

	for _, f := range fields {
		// Only text fields are ever written; a checkbox or choice whose
		// name matches is left untouched.
		if f.typ != "Tx" {
			continue
		}
		key, ok := Match(f.name)
		if !ok {
			continue
		}
		stats.Matched++
		value, ok := values[key]
		if !ok {
			continue
		}
		if e.setValue(f, value) {
			stats.Filled++
		}
	}

	// Name matching produced nothing usable; assume the canonical layout
	// and fill text fields in document order instead.
	if stats.Filled == 0 {
		stats.Positional = e.fillPositional(fields, values)
		stats.Filled = stats.Positional
	}

	if acroForm != nil {
		acroForm["NeedAppearances"] = types.Boolean(true)
	}
	e.lockFields(fields)

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, stats, fmt.Errorf("write filled document: %w", err)
	}

	e.log.Debug().
		Int("fields", stats.Fields).
		Int("matched", stats.Matched).
		Int("filled", stats.Filled).
		Int("positional", stats.Positional).
		Msg("template filled")
	return out.Bytes(), stats, nil
}

// collectFields walks the AcroForm Fields array. Fields without a name or
// with an unfillable type are skipped, never an error; a malformed entry is
// logged and skipped the same way.
func (e *Engine) collectFields(ctx *model.Context) (types.Dict, []field, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil, nil
	}
	acroForm, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, nil, fmt.Errorf("dereference AcroForm: %w", err)
	}
	if acroForm == nil {
		return nil, nil, nil
	}

	fieldsObj, found := acroForm.Find("Fields")
	if !found {
		return acroForm, nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return acroForm, nil, fmt.Errorf("dereference Fields: %w", err)
	}

	var fields []field
	for i, fieldObj := range fieldsArray {
		fieldDict, err := ctx.DereferenceDict(fieldObj)
		if err != nil || fieldDict == nil {
			e.log.Debug().Int("index", i).Msg("skipping unresolvable form field")
			continue
		}
		name := e.fieldName(ctx, fieldDict)
		if name == "" {
			continue
		}
		typ := e.fieldType(ctx, fieldDict)
		switch typ {
		case "Tx", "Btn", "Ch":
			fields = append(fields, field{name: name, typ: typ, dict: fieldDict})
		}
	}
	return acroForm, fields, nil
}

func (e *Engine) fieldName(ctx *model.Context, fieldDict types.Dict) string {
	nameObj, found := fieldDict.Find("T")
	if !found {
		return ""
	}
	name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil)
	if err != nil {
		return ""
	}
	return name
}

// fieldType resolves FT, walking Parent for inherited types.
func (e *Engine) fieldType(ctx *model.Context, fieldDict types.Dict) string {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return e.fieldType(ctx, parentDict)
			}
		}
		return ""
	}
	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return ""
	}
	return string(ftName)
}

// setValue writes a value into a text field dictionary. Non-text fields are
// never written. The existing appearance stream is dropped so viewers
// regenerate it.
func (e *Engine) setValue(f field, value string) bool {
	if f.typ != "Tx" {
		return false
	}
	f.dict["V"] = textString(value)
	delete(f.dict, "AP")
	delete(f.dict, "RV")
	return true
}

// fillPositional assigns values to text fields in document order following
// the configured canonical layout.
func (e *Engine) fillPositional(fields []field, values Values) int {
	var text []field
	for _, f := range fields {
		if f.typ == "Tx" {
			text = append(text, f)
		}
	}

	filled := 0
	for i, f := range text {
		if i >= len(e.order) {
			break
		}
		value, ok := values[e.order[i]]
		if !ok {
			continue
		}
		if e.setValue(f, value) {
			filled++
		}
	}
	return filled
}

// lockFields marks every field read-only so the generated document is not
// editable. This is the cross-viewer flattening approximation: a true
// appearance-stream flatten would discard the values we just set because
// NeedAppearances defers rendering to the viewer.
func (e *Engine) lockFields(fields []field) {
	for _, f := range fields {
		flags := 0
		if flagsObj, found := f.dict.Find("Ff"); found {
			if n, ok := flagsObj.(types.Integer); ok {
				flags = int(n)
			}
		}
		f.dict["Ff"] = types.Integer(flags | 1)
	}
}

// textString encodes a field value: ASCII as a plain string literal,
// anything else as a UTF-16BE hex literal with BOM.
func textString(s string) types.Object {
	ascii := true
	for _, r := range s {
		if r > 0x7e || r < 0x20 {
			ascii = false
			break
		}
	}
	if ascii {
		return types.StringLiteral(s)
	}
	units := utf16.Encode([]rune(s))
	b := make([]byte, 0, 2+2*len(units))
	b = append(b, 0xfe, 0xff)
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return types.NewHexLiteral(b)
}

// FieldInfo describes one template field for inspection tooling.
type FieldInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Key     string `json:"key,omitempty"`
	Matched bool   `json:"matched"`
}

// Inspect lists the fillable fields of a template and the semantic key each
// name resolves to. Used by the field-inspection command.
func (e *Engine) Inspect(template []byte) ([]FieldInfo, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(template), conf)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("ensure page count: %w", err)
	}

	_, fields, err := e.collectFields(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]FieldInfo, 0, len(fields))
	for _, f := range fields {
		info := FieldInfo{Name: f.name, Type: f.typ}
		if key, ok := Match(f.name); ok {
			info.Key = key
			info.Matched = true
		}
		infos = append(infos, info)
	}
	return infos, nil
}
