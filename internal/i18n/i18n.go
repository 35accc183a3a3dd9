// Package i18n holds the bilingual (English/French) message table used by API responses.
package i18n

import (
	"fmt"
	"strings"
)

// Language is a supported UI language.
type Language string

const (
	English Language = "en"
	French  Language = "fr"
)

// Languages lists every language that must have a translation for each key.
var Languages = []Language{English, French}

// Key identifies a translated message.
type Key string

const (
	KeyInvalidRequest      Key = "invalidRequest"
	KeyValidationFailed    Key = "validationFailed"
	KeyPleaseFillAllFields Key = "pleaseFillAllFields"
	KeyInvalidPhone        Key = "invalidPhone"
	KeyNotEnoughPoints     Key = "notEnoughPoints"
	KeyNotFound            Key = "notFound"
	KeyInvalidCredentials  Key = "invalidCredentials"
	KeyUnauthorized        Key = "unauthorized"
	KeyRetryLater          Key = "retryLater"
	KeyOrderPlaced         Key = "orderPlaced"
	KeyNotificationSent    Key = "notificationSent"
	KeyNotificationFailed  Key = "notificationFailed"
	KeyStatusUpdated       Key = "statusUpdated"
	KeyPointsAdjusted      Key = "pointsAdjusted"
)

// Keys is the closed set of message keys.
var Keys = []Key{
	KeyInvalidRequest,
	KeyValidationFailed,
	KeyPleaseFillAllFields,
	KeyInvalidPhone,
	KeyNotEnoughPoints,
	KeyNotFound,
	KeyInvalidCredentials,
	KeyUnauthorized,
	KeyRetryLater,
	KeyOrderPlaced,
	KeyNotificationSent,
	KeyNotificationFailed,
	KeyStatusUpdated,
	KeyPointsAdjusted,
}

var messages = map[Key]map[Language]string{
	KeyInvalidRequest: {
		English: "Invalid request body",
		French:  "Corps de requête invalide",
	},
	KeyValidationFailed: {
		English: "Some fields are invalid",
		French:  "Certains champs sont invalides",
	},
	KeyPleaseFillAllFields: {
		English: "Please fill in all fields",
		French:  "Veuillez remplir tous les champs",
	},
	KeyInvalidPhone: {
		English: "Please enter a valid 8-digit phone number",
		French:  "Veuillez saisir un numéro de téléphone valide à 8 chiffres",
	},
	KeyNotEnoughPoints: {
		English: "Not enough points for this order",
		French:  "Pas assez de points pour cette commande",
	},
	KeyNotFound: {
		English: "Not found",
		French:  "Introuvable",
	},
	KeyInvalidCredentials: {
		English: "Invalid credentials",
		French:  "Identifiants invalides",
	},
	KeyUnauthorized: {
		English: "Unauthorized",
		French:  "Non autorisé",
	},
	KeyRetryLater: {
		English: "Something went wrong. Please try again.",
		French:  "Une erreur est survenue. Veuillez réessayer.",
	},
	KeyOrderPlaced: {
		English: "Order placed successfully",
		French:  "Commande passée avec succès",
	},
	KeyNotificationSent: {
		English: "Telegram notification sent successfully",
		French:  "Notification Telegram envoyée avec succès",
	},
	KeyNotificationFailed: {
		English: "Failed to send Telegram notification",
		French:  "Échec de l'envoi de la notification Telegram",
	},
	KeyStatusUpdated: {
		English: "Order status updated",
		French:  "Statut de la commande mis à jour",
	},
	KeyPointsAdjusted: {
		English: "Points updated",
		French:  "Points mis à jour",
	},
}

// Validate checks that every key has a non-empty message in every language
// and that the table holds no unknown keys.
func Validate() error {
	return validateTable(messages)
}

func validateTable(table map[Key]map[Language]string) error {
	var problems []string
	known := make(map[Key]struct{}, len(Keys))
	for _, key := range Keys {
		known[key] = struct{}{}
		for _, lang := range Languages {
			if strings.TrimSpace(table[key][lang]) == "" {
				problems = append(problems, fmt.Sprintf("%s/%s", key, lang))
			}
		}
	}
	for key := range table {
		if _, ok := known[key]; !ok {
			problems = append(problems, fmt.Sprintf("unknown key %s", key))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("i18n: missing or invalid translations: %s", strings.Join(problems, ", "))
	}
	return nil
}

// T returns the message for key in lang, falling back to English.
func T(lang Language, key Key) string {
	if msg, ok := messages[key][lang]; ok && msg != "" {
		return msg
	}
	if msg, ok := messages[key][English]; ok {
		return msg
	}
	return string(key)
}

// Parse normalises a language tag such as "fr-FR" or "FR". Unknown tags map to English.
func Parse(tag string) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if strings.HasPrefix(tag, "fr") {
		return French
	}
	return English
}

// Detect picks the request language from an explicit query value, then the Accept-Language header.
func Detect(query, acceptLanguage string) Language {
	if query != "" {
		return Parse(query)
	}
	if acceptLanguage == "" {
		return English
	}
	first, _, _ := strings.Cut(acceptLanguage, ",")
	first, _, _ = strings.Cut(first, ";")
	return Parse(first)
}
