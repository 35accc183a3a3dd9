package i18n

import "testing"

func TestValidateMessageTable(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("expected complete table, got %v", err)
	}
}

func TestValidateReportsMissingTranslation(t *testing.T) {
	table := map[Key]map[Language]string{}
	for k, v := range messages {
		table[k] = v
	}
	table[KeyNotFound] = map[Language]string{English: "Not found"}

	if err := validateTable(table); err == nil {
		t.Fatal("expected error for missing French translation")
	}
}

func TestValidateReportsUnknownKey(t *testing.T) {
	table := map[Key]map[Language]string{}
	for k, v := range messages {
		table[k] = v
	}
	table[Key("bogus")] = map[Language]string{English: "x", French: "y"}

	if err := validateTable(table); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestTFallsBackToEnglish(t *testing.T) {
	if got := T(Language("de"), KeyNotEnoughPoints); got != messages[KeyNotEnoughPoints][English] {
		t.Fatalf("unexpected fallback: %q", got)
	}
	if got := T(French, KeyInvalidCredentials); got != "Identifiants invalides" {
		t.Fatalf("unexpected french message: %q", got)
	}
}

func TestDetect(t *testing.T) {
	cases := []struct {
		query, header string
		want          Language
	}{
		{"", "", English},
		{"fr", "", French},
		{"en", "fr-FR,fr;q=0.9", English},
		{"", "fr-CA,fr;q=0.9,en;q=0.8", French},
		{"", "de-DE", English},
	}
	for _, tc := range cases {
		if got := Detect(tc.query, tc.header); got != tc.want {
			t.Errorf("Detect(%q, %q) = %s, want %s", tc.query, tc.header, got, tc.want)
		}
	}
}
