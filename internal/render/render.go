// Package render turns domain records into the semi-structured markup the
// content extractor consumes: one level-1 heading, at most one level-2
// heading and the printable fields wrapped in section containers, in page
// order. Missing optional fields render as explicit placeholders because the
// extractor cannot tell "absent" from "empty".
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/locadoc/locadoc/internal/format"
	"github.com/locadoc/locadoc/internal/store"
)

// Fallback titles per document type, also used by the extractor when a
// heading is somehow missing.
const (
	LeaseTitle     = "CONTRAT DE LOCATION"
	InventoryTitle = "ÉTAT DES LIEUX"
	ReceiptTitle   = "QUITTANCE DE LOYER"
)

const (
	missing     = "Non renseigné"
	missingDate = "Non spécifiée"
)

var conditionLabels = map[string]string{
	"neuf":    "État neuf",
	"bon":     "Bon état",
	"moyen":   "État moyen",
	"mauvais": "Mauvais état",
}

// ConditionLabel maps a stored room condition to its display label.
func ConditionLabel(condition string) string {
	if label, ok := conditionLabels[condition]; ok {
		return label
	}
	return missing
}

var leaseKindLabels = map[string]string{
	"vide":   "Location vide",
	"meuble": "Location meublée",
}

// LeaseKindLabel maps a stored lease kind to its display label.
func LeaseKindLabel(kind string) string {
	if label, ok := leaseKindLabels[kind]; ok {
		return label
	}
	if kind != "" {
		return kind
	}
	return missing
}

// Lease renders a lease contract.
func Lease(rec *store.LeaseRecord) string {
	var b markup
	b.h1(LeaseTitle)
	b.h2(LeaseKindLabel(rec.Lease.Kind))

	b.section("Bailleur : %s", orMissing(rec.Owner.DisplayName()))
	b.section("Adresse du bailleur : %s", orMissing(ownerAddress(rec.Owner)))
	b.section("Locataire : %s", orMissing(rec.Tenant.DisplayName()))
	b.section("Adresse du logement : %s", orMissing(propertyAddress(rec.Property)))
	b.section("Type de bail : %s", LeaseKindLabel(rec.Lease.Kind))
	b.section("Date de début : %s", dateOr(rec.Lease.StartDate, missingDate))
	if rec.Lease.EndDate != nil {
		b.section("Date de fin : %s", format.Date(*rec.Lease.EndDate))
	} else {
		b.section("Date de fin : %s", missingDate)
	}
	b.section("Loyer mensuel : %s", format.Euros(rec.Lease.RentAmount))
	b.section("Charges : %s", format.Euros(rec.Lease.Charges))
	b.section("Dépôt de garantie : %s", format.Euros(rec.Lease.Deposit))
	return b.String()
}

// Inventory renders an "état des lieux", one section per inspected room.
func Inventory(rec *store.InventoryRecord) string {
	var b markup
	b.h1(InventoryTitle)
	switch rec.Inventory.Kind {
	case "sortie":
		b.h2("État des lieux de sortie")
	default:
		b.h2("État des lieux d'entrée")
	}

	b.section("Date : %s", dateOr(rec.Inventory.Date, missingDate))
	b.section("Locataire : %s", orMissing(rec.Tenant.DisplayName()))
	b.section("Adresse : %s", orMissing(propertyAddress(rec.Property)))

	for _, room := range rec.Rooms {
		line := fmt.Sprintf("%s : %s", orMissing(room.Name), ConditionLabel(room.Condition))
		if room.Notes != "" {
			line += " - " + room.Notes
		}
		b.rawSection(esc(line))
	}

	b.section("Observations : %s", orMissing(rec.Inventory.Notes))
	return b.String()
}

// Receipt renders a rent receipt.
func Receipt(rec *store.RentRecord) string {
	var b markup
	b.h1(ReceiptTitle)
	period := format.MonthYear(rec.Rent.Month, rec.Rent.Year)
	b.h2(period)

	b.section("Bailleur : %s", orMissing(rec.Owner.DisplayName()))
	b.section("Adresse du bailleur : %s", orMissing(ownerAddress(rec.Owner)))
	b.section("Locataire : %s", orMissing(rec.Tenant.DisplayName()))
	b.section("Adresse du logement : %s", orMissing(propertyAddress(rec.Property)))
	b.section("Période : %s", period)
	b.section("Loyer : %s", format.Euros(rec.Rent.Amount))
	b.section("Charges : %s", format.Euros(rec.Rent.Charges))
	b.section("Total : %s", format.Euros(rec.Rent.Amount+rec.Rent.Charges))
	if rec.Rent.PaidAt != nil {
		b.section("Date de paiement : %s", format.Date(*rec.Rent.PaidAt))
	} else {
		b.section("Date de paiement : %s", missingDate)
	}
	b.section("Statut : %s", statusLabel(rec.Rent.Status))
	return b.String()
}

func statusLabel(status string) string {
	switch status {
	case "paye":
		return "Payé"
	case "en_attente":
		return "En attente"
	case "retard":
		return "En retard"
	default:
		return orMissing(status)
	}
}

func propertyAddress(p store.Property) string {
	return joinAddress(p.Address, p.PostalCode, p.City)
}

func ownerAddress(o store.Owner) string {
	return joinAddress(o.Address, o.PostalCode, o.City)
}

func joinAddress(street, postal, city string) string {
	var parts []string
	if street != "" {
		parts = append(parts, street)
	}
	locality := strings.TrimSpace(postal + " " + city)
	if locality != "" {
		parts = append(parts, locality)
	}
	return strings.Join(parts, ", ")
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return missing
	}
	return s
}

func dateOr(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return format.Date(t)
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func esc(s string) string {
	return escaper.Replace(s)
}

// markup is a tiny builder for the renderer output format.
type markup struct {
	sb strings.Builder
}

func (m *markup) h1(text string) {
	fmt.Fprintf(&m.sb, "<h1>%s</h1>\n", esc(text))
}

func (m *markup) h2(text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(&m.sb, "<h2>%s</h2>\n", esc(text))
}

func (m *markup) section(formatStr string, args ...any) {
	for i, a := range args {
		if s, ok := a.(string); ok {
			args[i] = esc(s)
		}
	}
	fmt.Fprintf(&m.sb, `<div class="section">`+formatStr+"</div>\n", args...)
}

func (m *markup) rawSection(escaped string) {
	fmt.Fprintf(&m.sb, `<div class="section">%s</div>`+"\n", escaped)
}

func (m *markup) String() string {
	return m.sb.String()
}
