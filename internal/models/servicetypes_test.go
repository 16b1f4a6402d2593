package models

import "testing"

func TestServiceTypeForTerm(t *testing.T) {
	cases := []struct {
		term string
		want string
	}{
		{"tesisatçı", ServiceTypePlumbing},
		{"tesisatci", ServiceTypePlumbing},
		{"muslukçu", ServiceTypePlumbing},
		{"elektrikçi", ServiceTypeElectrical},
		{"temizlik", ServiceTypeCleaning},
		{"beyaz eşya", ServiceTypeAppliance},
		{"bilgisayarcı", ServiceTypeComputer},
		{"telefoncu", ServiceTypePhone},
		{"usta", ServiceTypeOther},
		{"  tesisat  ", ServiceTypePlumbing}, // surrounding whitespace
		{"TESISATCI", ServiceTypePlumbing},   // ASCII uppercase
		{"TESİSATÇI", ServiceTypePlumbing},   // Turkish dotted capital İ
		{"ELEKTRİKÇİ", ServiceTypeElectrical},
		{"boyacı", ""}, // trade we do not cover
		{"", ""},
	}
	for _, c := range cases {
		if got := ServiceTypeForTerm(c.term); got != c.want {
			t.Errorf("ServiceTypeForTerm(%q) = %q, want %q", c.term, got, c.want)
		}
	}
}

func TestValidServiceType(t *testing.T) {
	for code := range ServiceTypeNames {
		if !ValidServiceType(code) {
			t.Errorf("expected %q to be valid", code)
		}
	}
	for _, code := range []string{"", "all", "plumber", "Tesisatçı"} {
		if ValidServiceType(code) {
			t.Errorf("expected %q to be invalid", code)
		}
	}
}
