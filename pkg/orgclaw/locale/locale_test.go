package locale

import (
	"strings"
	"testing"
	"time"
)

func TestTReplacesPlaceholders(t *testing.T) {
	t.Parallel()

	got := T(PortugueseBR, "reminder.scheduled", "id", "RE", "time", "14:30")
	if !strings.Contains(got, "RE") || !strings.Contains(got, "14:30") {
		t.Errorf("placeholders not replaced: %q", got)
	}
}

func TestTFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	// Every key present in English must resolve for every language.
	for lang := range templates {
		for key := range templates[English] {
			if got := T(lang, key); got == key {
				t.Errorf("key %q unresolved for %s", key, lang)
			}
		}
	}
}

func TestAllLanguagesCoverEnglishKeys(t *testing.T) {
	t.Parallel()

	for lang, table := range templates {
		if lang == English {
			continue
		}
		for key := range templates[English] {
			if _, ok := table[key]; !ok {
				t.Errorf("%s missing key %q", lang, key)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"pt-BR", PortugueseBR, true},
		{"brasil", PortugueseBR, true},
		{"português", PortuguesePT, true},
		{"ESPAÑOL", Spanish, true},
		{"english", English, true},
		{"klingon", "", false},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInferFromPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phone    string
		wantLang Language
		wantTZ   string
	}{
		{"+351911234567", PortuguesePT, "Europe/Lisbon"},
		{"5511987654321", PortugueseBR, "America/Sao_Paulo"},
		{"+5592988887777", PortugueseBR, "America/Manaus"},
		{"+5568999990000", PortugueseBR, "America/Rio_Branco"},
		{"+5585912345678", PortugueseBR, "America/Fortaleza"},
		{"+34600111222", Spanish, "Europe/Madrid"},
		{"+14155552671", English, "America/New_York"},
		{"", English, "UTC"},
	}
	for _, tt := range tests {
		got := InferFromPhone(tt.phone)
		if got.Language != tt.wantLang || got.Timezone != tt.wantTZ {
			t.Errorf("InferFromPhone(%q) = %+v, want {%s %s}", tt.phone, got, tt.wantLang, tt.wantTZ)
		}
	}
}

func TestTruncatePhone(t *testing.T) {
	t.Parallel()

	got := TruncatePhone("+5511987654321")
	if strings.Contains(got, "987654") {
		t.Errorf("middle digits leaked: %q", got)
	}
	if !strings.HasPrefix(got, "5511") || !strings.HasSuffix(got, "21") {
		t.Errorf("unexpected shape: %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	d := time.Date(2025, 2, 10, 14, 30, 0, 0, time.UTC) // a Monday
	if got := FormatDate(PortuguesePT, d); got != "segunda-feira, 10 de fevereiro" {
		t.Errorf("pt-PT FormatDate = %q", got)
	}
	if got := FormatDate(English, d); got != "Monday, February 10" {
		t.Errorf("en FormatDate = %q", got)
	}
}

func TestCanonicalCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word string
		want string
		ok   bool
	}{
		{"mes", "mes", true},
		{"mês", "mes", true},
		{"ajuda", "help", true},
		{"bomba", "nuke", true},
		{"done", "feito", true},
		{"frobnicate", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalCommand(tt.word)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CanonicalCommand(%q) = (%q, %v), want (%q, %v)", tt.word, got, ok, tt.want, tt.ok)
		}
	}
}
