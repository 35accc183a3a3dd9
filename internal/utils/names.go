package utils

import (
	"strings"

	"github.com/example/kaskroutek/internal/i18n"
)

// ParseBilingualName splits "English Name, French Name" on the first comma.
// A name without a comma is used for both languages.
func ParseBilingualName(name string) (nameEn, nameFr string) {
	en, fr, found := strings.Cut(name, ",")
	if !found {
		return name, name
	}
	return strings.TrimSpace(en), strings.TrimSpace(fr)
}

// CreateBilingualName joins the English and French names into the stored format.
func CreateBilingualName(nameEn, nameFr string) string {
	return strings.TrimSpace(nameEn) + ", " + strings.TrimSpace(nameFr)
}

// IsValidBilingualName reports whether name has a non-empty English and French part.
func IsValidBilingualName(name string) bool {
	en, fr, found := strings.Cut(name, ",")
	return found && strings.TrimSpace(en) != "" && strings.TrimSpace(fr) != ""
}

// LocalizedName returns the part of a bilingual name for lang.
func LocalizedName(name string, lang i18n.Language) string {
	en, fr := ParseBilingualName(name)
	if lang == i18n.French {
		return fr
	}
	return en
}
