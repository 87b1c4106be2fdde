// models/service_type.go
package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ServiceType is one entry of the fixed service taxonomy.
type ServiceType struct {
	ID        string   `bson:"id" json:"id"`               // e.g. "plomberie"
	Label     string   `bson:"label" json:"label"`         // display name, e.g. "Plomberie"
	BaseRate  float64  `bson:"baseRate" json:"baseRate"`   // dynamic pricing base, MAD per intervention
	LaborBase float64  `bson:"laborBase" json:"laborBase"` // quick-estimate labor reference, MAD
	Keywords  []string `bson:"keywords" json:"keywords"`
}

const (
	ServicePlumbing   = "plomberie"
	ServiceElectrical = "electricite"
	ServiceAC         = "climatisation"
)

// DefaultBaseRate applies to services missing from the taxonomy.
const DefaultBaseRate = 250.0

// Services is the canonical taxonomy, ordered for display.
var Services = []ServiceType{
	{ID: ServicePlumbing, Label: "Plomberie", BaseRate: 250, LaborBase: 200,
		Keywords: []string{"fuite", "robinet", "evier", "lavabo", "chauffe-eau", "canalisation", "toilette", "wc", "tuyau", "douche", "jhaz", "lma"}},
	{ID: ServiceElectrical, Label: "Électricité", BaseRate: 280, LaborBase: 220,
		Keywords: []string{"prise", "disjoncteur", "courant", "lampe", "interrupteur", "cable", "tableau electrique", "court-circuit", "do", "kahraba"}},
	{ID: ServiceAC, Label: "Climatisation", BaseRate: 350, LaborBase: 300,
		Keywords: []string{"clim", "climatiseur", "climatisation", "split", "recharge gaz", "kelimatizor"}},
	{ID: "menuiserie", Label: "Menuiserie", BaseRate: 300, LaborBase: 250,
		Keywords: []string{"meuble", "bois", "placard", "armoire", "etagere", "nejjar"}},
	{ID: "peinture", Label: "Peinture", BaseRate: 220, LaborBase: 180,
		Keywords: []string{"peinture", "peindre", "mur", "plafond", "enduit", "sbagha"}},
	{ID: "serrurerie", Label: "Serrurerie", BaseRate: 200, LaborBase: 150,
		Keywords: []string{"serrure", "cle", "porte bloquee", "cylindre", "verrou", "sarout"}},
	{ID: "maconnerie", Label: "Maçonnerie", BaseRate: 300, LaborBase: 250,
		Keywords: []string{"fissure", "beton", "ciment", "brique", "dalle", "bennay"}},
	{ID: "electromenager", Label: "Électroménager", BaseRate: 260, LaborBase: 200,
		Keywords: []string{"frigo", "refrigerateur", "machine a laver", "lave-vaisselle", "four", "micro-onde", "tellaja"}},
	{ID: "nettoyage", Label: "Nettoyage", BaseRate: 180, LaborBase: 150,
		Keywords: []string{"nettoyage", "menage", "nettoyer", "tanzif"}},
	{ID: "jardinage", Label: "Jardinage", BaseRate: 180, LaborBase: 150,
		Keywords: []string{"jardin", "gazon", "arbre", "taille", "arrosage"}},
	{ID: "vitrerie", Label: "Vitrerie", BaseRate: 240, LaborBase: 200,
		Keywords: []string{"vitre", "fenetre", "verre", "miroir", "jaj"}},
	{ID: "carrelage", Label: "Carrelage", BaseRate: 280, LaborBase: 230,
		Keywords: []string{"carrelage", "carreau", "zellige", "faience", "joint"}},
}

var serviceIndex = func() map[string]ServiceType {
	idx := make(map[string]ServiceType, len(Services))
	for _, s := range Services {
		idx[s.ID] = s
	}
	return idx
}()

// LookupService resolves a service name case- and accent-insensitively.
func LookupService(name string) (ServiceType, bool) {
	s, ok := serviceIndex[NormalizeKey(name)]
	return s, ok
}

// CanonicalService returns the taxonomy id for name, or the normalized name itself
// when it is not part of the taxonomy.
func CanonicalService(name string) string {
	if s, ok := LookupService(name); ok {
		return s.ID
	}
	return NormalizeKey(name)
}

// NormalizeKey lowercases s, trims it and strips diacritics so that
// "Électricité", "electricite" and " ELECTRICITE " compare equal.
func NormalizeKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(out)
}

// SameCity compares two city names ignoring case and accents.
func SameCity(a, b string) bool {
	return a != "" && NormalizeKey(a) == NormalizeKey(b)
}
