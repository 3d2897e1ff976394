package fill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		want    string
		matched bool
	}{
		{"exact key", "locataire", KeyLocataire, true},
		{"uppercase", "LOCATAIRE", KeyLocataire, true},
		{"underscores", "nom_du_locataire", KeyLocataire, true},
		{"dashes and spaces", "Nom du locataire", KeyLocataire, true},
		{"accents folded", "Période", KeyPeriode, true},
		{"english tenant", "tenant_name", KeyLocataire, true},
		{"owner maps to bailleur", "owner", KeyBailleur, true},
		{"proprietaire", "nom_proprietaire", KeyBailleur, true},
		{"landlord address wins over landlord", "adresse_bailleur", KeyAdresseBailleur, true},
		{"owner address english", "landlord address", KeyAdresseBailleur, true},
		{"postal before city", "code_postal", KeyCodePostal, true},
		{"ville", "ville_logement", KeyVille, true},
		{"property address", "adresse_logement", KeyAdresse, true},
		{"month maps to periode", "mois", KeyPeriode, true},
		{"loyer", "montant_loyer", KeyLoyer, true},
		{"charges", "charges_mensuelles", KeyCharges, true},
		{"total", "montant_total", KeyTotal, true},
		{"date", "date_emission", KeyDate, true},
		{"payment status", "statut_paiement", KeyPaiement, true},
		{"deposit exact", "depot_garantie", KeyDepotGarantie, true},
		{"deposit wordy", "depot_de_garantie", KeyDepotGarantie, true},
		{"start date beats date", "date_de_debut", KeyDateDebut, true},
		{"lease type", "type_de_bail", KeyTypeBail, true},
		{"inventory type", "type_etat_des_lieux", KeyTypeEtat, true},
		{"unmatched", "signature", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.field)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// montant_loyer must resolve to the rent, not the generic amount: rule order
// is part of the contract.
func TestMatch_RuleOrder(t *testing.T) {
	got, ok := Match("montant_loyer")
	assert.True(t, ok)
	assert.Equal(t, KeyLoyer, got)

	got, ok = Match("adresse_du_bailleur")
	assert.True(t, ok)
	assert.Equal(t, KeyAdresseBailleur, got)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "depotgarantie", Normalize("Dépôt_de-Garantie"))
	assert.Equal(t, "periode", Normalize("période"))
	assert.Equal(t, "villedulogement", Normalize("Ville du logement"))
}

func TestDefaultOrder(t *testing.T) {
	assert.Equal(t, KeyPeriode, DefaultOrder[0])
	assert.Equal(t, KeyPaiement, DefaultOrder[len(DefaultOrder)-1])
	for _, key := range DefaultOrder {
		assert.True(t, IsKey(key), key)
	}
}
