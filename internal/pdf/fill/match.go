package fill

import "strings"

// Semantic keys: the vocabulary shared between template field names and the
// values the adapters build. Keys are lower-cased, alphanumeric-only.
const (
	KeyTitre           = "titre"
	KeyLocataire       = "locataire"
	KeyBailleur        = "bailleur"
	KeyAdresseBailleur = "adressebailleur"
	KeyAdresse         = "adresse"
	KeyVille           = "ville"
	KeyCodePostal      = "codepostal"
	KeyPeriode         = "periode"
	KeyLoyer           = "loyer"
	KeyCharges         = "charges"
	KeyTotal           = "total"
	KeyDate            = "date"
	KeyPaiement        = "paiement"
	KeyTypeBail        = "typebail"
	KeyTypeEtat        = "typeetat"
	KeyDateDebut       = "datedebut"
	KeyDepotGarantie   = "depotgarantie"
)

// Values maps semantic keys to already-formatted display strings.
type Values map[string]string

// DefaultOrder is the canonical receipt layout assumed by the positional
// fallback. It is a documented heuristic, not a guaranteed contract, which
// is why the engine accepts an override from configuration.
var DefaultOrder = []string{
	KeyPeriode,
	KeyBailleur,
	KeyAdresseBailleur,
	KeyLocataire,
	KeyAdresse,
	KeyCodePostal,
	KeyVille,
	KeyLoyer,
	KeyCharges,
	KeyTotal,
	KeyDate,
	KeyPaiement,
}

var vocabulary = map[string]bool{
	KeyTitre:           true,
	KeyLocataire:       true,
	KeyBailleur:        true,
	KeyAdresseBailleur: true,
	KeyAdresse:         true,
	KeyVille:           true,
	KeyCodePostal:      true,
	KeyPeriode:         true,
	KeyLoyer:           true,
	KeyCharges:         true,
	KeyTotal:           true,
	KeyDate:            true,
	KeyPaiement:        true,
	KeyTypeBail:        true,
	KeyTypeEtat:        true,
	KeyDateDebut:       true,
	KeyDepotGarantie:   true,
}

// IsKey reports whether s is a known semantic key.
func IsKey(s string) bool {
	return vocabulary[s]
}

// rule binds a semantic key to a predicate over normalized field names.
// Rules are evaluated in order; the first match wins, so the more specific
// concepts (landlord address) come before the broader ones (landlord).
type rule struct {
	key   string
	match func(name string) bool
}

var rules = []rule{
	{KeyAdresseBailleur, allOf(
		containsAny("bailleur", "proprietaire", "owner", "landlord"),
		containsAny("adresse", "address"))},
	{KeyLocataire, containsAny("locataire", "tenant")},
	{KeyBailleur, containsAny("bailleur", "proprietaire", "owner", "landlord")},
	{KeyCodePostal, containsAny("codepostal", "postal", "zip")},
	{KeyVille, containsAny("ville", "city")},
	{KeyAdresse, containsAny("adresse", "address", "logement", "bien")},
	{KeyPeriode, containsAny("periode", "mois", "month", "period")},
	{KeyDepotGarantie, containsAny("depot", "garantie", "deposit", "caution")},
	{KeyTypeBail, allOf(containsAny("type"), containsAny("bail", "location"))},
	{KeyTypeEtat, allOf(containsAny("type"), containsAny("etat"))},
	{KeyLoyer, containsAny("loyer", "rent")},
	{KeyCharges, containsAny("charge")},
	{KeyTotal, containsAny("total", "montant", "amount")},
	{KeyDateDebut, allOf(containsAny("date"), containsAny("debut", "start", "effet"))},
	{KeyDate, containsAny("date")},
	{KeyPaiement, containsAny("paiement", "paye", "paid", "payment", "statut", "status")},
}

// Match maps a raw template field name to a semantic key: exact vocabulary
// match first, then the substring heuristics. Unmatched names are skipped by
// the caller, never an error.
func Match(fieldName string) (string, bool) {
	name := Normalize(fieldName)
	if name == "" {
		return "", false
	}
	if vocabulary[name] {
		return name, true
	}
	for _, r := range rules {
		if r.match(name) {
			return r.key, true
		}
	}
	return "", false
}

// Normalize lower-cases a field name, strips separators and folds the
// accented characters French templates tend to use.
func Normalize(name string) string {
	name = strings.ToLower(name)
	name = separatorStripper.Replace(name)
	return accentFolder.Replace(name)
}

var separatorStripper = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "")

var accentFolder = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c", "œ", "oe",
)

func containsAny(subs ...string) func(string) bool {
	return func(name string) bool {
		for _, sub := range subs {
			if strings.Contains(name, sub) {
				return true
			}
		}
		return false
	}
}

func allOf(preds ...func(string) bool) func(string) bool {
	return func(name string) bool {
		for _, p := range preds {
			if !p(name) {
				return false
			}
		}
		return true
	}
}
