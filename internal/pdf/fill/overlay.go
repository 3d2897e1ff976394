package fill

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Display labels for the overlay stamp, keyed by semantic key.
var keyLabels = map[string]string{
	KeyTitre:           "Document",
	KeyPeriode:         "Période",
	KeyBailleur:        "Bailleur",
	KeyAdresseBailleur: "Adresse du bailleur",
	KeyLocataire:       "Locataire",
	KeyAdresse:         "Adresse",
	KeyCodePostal:      "Code postal",
	KeyVille:           "Ville",
	KeyLoyer:           "Loyer",
	KeyCharges:         "Charges",
	KeyTotal:           "Total",
	KeyDate:            "Date",
	KeyPaiement:        "Paiement",
	KeyTypeBail:        "Type de bail",
	KeyTypeEtat:        "Type d'état des lieux",
	KeyDateDebut:       "Date de début",
	KeyDepotGarantie:   "Dépôt de garantie",
}

const overlayDesc = "fontname:Helvetica, points:11, scale:1 abs, pos:tl, off:40 -40, rot:0, fillcolor:#000000, opacity:1"

// overlay stamps the values onto the first page of a template that carries
// no form fields at all.
func (e *Engine) overlay(template []byte, values Values, conf *model.Configuration) ([]byte, error) {
	text := overlayText(e.order, values)
	if text == "" {
		return nil, fmt.Errorf("no values to stamp")
	}

	wm, err := api.TextWatermark(text, overlayDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("build stamp: %w", err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(template), &out, []string{"1"}, wm, conf); err != nil {
		return nil, fmt.Errorf("stamp first page: %w", err)
	}
	return out.Bytes(), nil
}

// overlayText renders "Label : value" lines, title first, then the
// remaining values in canonical order so the stamp reads like the document
// it replaces.
func overlayText(order []string, values Values) string {
	var lines []string
	if title, ok := values[KeyTitre]; ok && title != "" {
		lines = append(lines, title)
	}
	seen := map[string]bool{KeyTitre: true}
	for _, key := range order {
		seen[key] = true
		appendLine(&lines, key, values)
	}
	for _, key := range []string{KeyTypeBail, KeyTypeEtat, KeyDateDebut, KeyDepotGarantie} {
		if !seen[key] {
			appendLine(&lines, key, values)
		}
	}
	return strings.Join(lines, "\n")
}

func appendLine(lines *[]string, key string, values Values) {
	value, ok := values[key]
	if !ok || value == "" {
		return
	}
	label := keyLabels[key]
	if label == "" {
		label = key
	}
	*lines = append(*lines, label+" : "+value)
}
