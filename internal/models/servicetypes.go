package models

import (
	"strings"
	"unicode"
)

// Service categories. The set is closed; "other" is the catch-all.
const (
	ServiceTypePlumbing   = "plumbing"
	ServiceTypeElectrical = "electrical"
	ServiceTypeCleaning   = "cleaning"
	ServiceTypeAppliance  = "appliance"
	ServiceTypeComputer   = "computer"
	ServiceTypePhone      = "phone"
	ServiceTypeOther      = "other"
)

// ServiceTypeNames maps category codes to their Turkish display names.
var ServiceTypeNames = map[string]string{
	ServiceTypePlumbing:   "Tesisatçı",
	ServiceTypeElectrical: "Elektrikçi",
	ServiceTypeCleaning:   "Temizlik",
	ServiceTypeAppliance:  "Beyaz Eşya",
	ServiceTypeComputer:   "Bilgisayar",
	ServiceTypePhone:      "Telefon",
	ServiceTypeOther:      "Diğer",
}

// serviceTypeSynonyms maps colloquial Turkish trade terms to category codes so
// that a free-text search for "tesisatçı" also matches plumbing providers whose
// company name never contains the word. Static domain data, lowercase keys.
var serviceTypeSynonyms = map[string]string{
	"tesisatçı":    ServiceTypePlumbing,
	"tesisatci":    ServiceTypePlumbing,
	"tesisat":      ServiceTypePlumbing,
	"su tesisatı":  ServiceTypePlumbing,
	"muslukçu":     ServiceTypePlumbing,
	"elektrikçi":   ServiceTypeElectrical,
	"elektrikci":   ServiceTypeElectrical,
	"elektrik":     ServiceTypeElectrical,
	"temizlikçi":   ServiceTypeCleaning,
	"temizlikci":   ServiceTypeCleaning,
	"temizlik":     ServiceTypeCleaning,
	"beyaz eşya":   ServiceTypeAppliance,
	"beyaz esya":   ServiceTypeAppliance,
	"buzdolabı":    ServiceTypeAppliance,
	"çamaşır makinesi": ServiceTypeAppliance,
	"bilgisayarcı": ServiceTypeComputer,
	"bilgisayarci": ServiceTypeComputer,
	"bilgisayar":   ServiceTypeComputer,
	"telefoncu":    ServiceTypePhone,
	"telefon tamiri": ServiceTypePhone,
	"tamirci":      ServiceTypeOther,
	"usta":         ServiceTypeOther,
}

// ValidServiceType reports whether code is a known category.
func ValidServiceType(code string) bool {
	_, ok := ServiceTypeNames[code]
	return ok
}

// ServiceTypeForTerm resolves a colloquial search term to a category code.
// Returns "" when the term maps to nothing. Lookup folds case twice: plain
// ToLower keeps ASCII input working ("TESISATCI" -> "tesisatci"), while the
// Turkish fold handles dotted capital İ ("TESİSATÇI" -> "tesisatçı"), which
// plain ToLower turns into i with a combining dot and misses the key.
func ServiceTypeForTerm(term string) string {
	term = strings.TrimSpace(term)
	if code, ok := serviceTypeSynonyms[strings.ToLower(term)]; ok {
		return code
	}
	return serviceTypeSynonyms[strings.ToLowerSpecial(unicode.TurkishCase, term)]
}
