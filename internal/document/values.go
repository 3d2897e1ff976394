package document

import (
	"strings"

	"github.com/locadoc/locadoc/internal/format"
	"github.com/locadoc/locadoc/internal/pdf/fill"
	"github.com/locadoc/locadoc/internal/render"
	"github.com/locadoc/locadoc/internal/store"
)

// The value maps are built once per request and reused by every matching
// pass of the fill engine. All entries are display-ready strings.

func leaseValues(rec *store.LeaseRecord) fill.Values {
	v := fill.Values{
		fill.KeyTitre:         render.LeaseTitle,
		fill.KeyLocataire:     rec.Tenant.DisplayName(),
		fill.KeyBailleur:      rec.Owner.DisplayName(),
		fill.KeyAdresse:       rec.Property.Address,
		fill.KeyVille:         rec.Property.City,
		fill.KeyCodePostal:    rec.Property.PostalCode,
		fill.KeyTypeBail:      render.LeaseKindLabel(rec.Lease.Kind),
		fill.KeyLoyer:         format.Euros(rec.Lease.RentAmount),
		fill.KeyCharges:       format.Euros(rec.Lease.Charges),
		fill.KeyTotal:         format.Euros(rec.Lease.RentAmount + rec.Lease.Charges),
		fill.KeyDepotGarantie: format.Euros(rec.Lease.Deposit),
	}
	setAddress(v, fill.KeyAdresseBailleur, rec.Owner.Address, rec.Owner.PostalCode, rec.Owner.City)
	if !rec.Lease.StartDate.IsZero() {
		v[fill.KeyDateDebut] = format.Date(rec.Lease.StartDate)
		v[fill.KeyDate] = format.Date(rec.Lease.StartDate)
	}
	return v
}

func inventoryValues(rec *store.InventoryRecord) fill.Values {
	kind := "État des lieux d'entrée"
	if rec.Inventory.Kind == "sortie" {
		kind = "État des lieux de sortie"
	}
	v := fill.Values{
		fill.KeyTitre:      render.InventoryTitle,
		fill.KeyTypeEtat:   kind,
		fill.KeyLocataire:  rec.Tenant.DisplayName(),
		fill.KeyAdresse:    rec.Property.Address,
		fill.KeyVille:      rec.Property.City,
		fill.KeyCodePostal: rec.Property.PostalCode,
	}
	if !rec.Inventory.Date.IsZero() {
		v[fill.KeyDate] = format.Date(rec.Inventory.Date)
	}
	return v
}

func receiptValues(rec *store.RentRecord) fill.Values {
	v := fill.Values{
		fill.KeyTitre:      render.ReceiptTitle,
		fill.KeyPeriode:    format.MonthYear(rec.Rent.Month, rec.Rent.Year),
		fill.KeyBailleur:   rec.Owner.DisplayName(),
		fill.KeyLocataire:  rec.Tenant.DisplayName(),
		fill.KeyAdresse:    rec.Property.Address,
		fill.KeyVille:      rec.Property.City,
		fill.KeyCodePostal: rec.Property.PostalCode,
		fill.KeyLoyer:      format.Euros(rec.Rent.Amount),
		fill.KeyCharges:    format.Euros(rec.Rent.Charges),
		fill.KeyTotal:      format.Euros(rec.Rent.Amount + rec.Rent.Charges),
	}
	setAddress(v, fill.KeyAdresseBailleur, rec.Owner.Address, rec.Owner.PostalCode, rec.Owner.City)
	if rec.Rent.PaidAt != nil {
		v[fill.KeyDate] = format.Date(*rec.Rent.PaidAt)
		v[fill.KeyPaiement] = "Payé"
	}
	return v
}

func setAddress(v fill.Values, key, street, postal, city string) {
	var parts []string
	if street != "" {
		parts = append(parts, street)
	}
	locality := strings.TrimSpace(postal + " " + city)
	if locality != "" {
		parts = append(parts, locality)
	}
	if len(parts) > 0 {
		v[key] = strings.Join(parts, ", ")
	}
}
