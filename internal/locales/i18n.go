package locales

import (
	"embed"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

// DefaultLanguage is the language code used when a user's language has no translation.
var DefaultLanguage = language.English.String()

var (
	mu     sync.RWMutex
	bundle *i18n.Bundle
)

// Init initializes the i18n bundle by loading the embedded message files and setting the default language.
func Init(defaultLangCode string) {
	tag, err := language.Parse(defaultLangCode)
	if err != nil {
		log.Printf("WARN: Failed to parse default language code '%s': %v. Falling back to English.", defaultLangCode, err)
		tag = language.English
	}

	b := i18n.NewBundle(tag)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := localeFS.ReadDir(".")
	if err != nil {
		log.Fatalf("Failed to read embedded locales directory: %v", err)
	}

	loaded := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		if _, err := b.LoadMessageFileFS(localeFS, file.Name()); err != nil {
			log.Printf("WARN: Failed to load message file '%s': %v", file.Name(), err)
			continue
		}
		loaded++
	}
	if loaded == 0 {
		log.Fatalf("No message files loaded from locales/")
	}

	mu.Lock()
	bundle = b
	DefaultLanguage = tag.String()
	mu.Unlock()
	log.Printf("i18n bundle initialized with %d file(s). Default language: %s", loaded, tag.String())
}

func current() *i18n.Bundle {
	mu.RLock()
	defer mu.RUnlock()
	if bundle == nil {
		log.Panicln("Attempted to use localization before i18n bundle initialization.")
	}
	return bundle
}

// NewLocalizer creates a localizer for the given language preferences (e.g. "en", "ru").
// The default language is always appended as the last preference.
func NewLocalizer(langPrefs ...string) *i18n.Localizer {
	b := current()
	mu.RLock()
	prefs := append(langPrefs, DefaultLanguage)
	mu.RUnlock()
	return i18n.NewLocalizer(b, prefs...)
}

// GetMessage retrieves and formats a message by its ID using the provided localizer.
// It returns the message ID itself if no translation exists.
func GetMessage(localizer *i18n.Localizer, msgID string, templateData map[string]interface{}, pluralCount *int) string {
	config := &i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: templateData,
	}
	if pluralCount != nil {
		config.PluralCount = *pluralCount
	}

	localizedMsg, err := localizer.Localize(config)
	if err != nil {
		log.Printf("ERROR: Failed to localize message ID '%s': %v. Falling back to English.", msgID, err)

		englishLocalizer := i18n.NewLocalizer(current(), language.English.String())
		fallbackMsg, fallbackErr := englishLocalizer.Localize(config)
		if fallbackErr == nil {
			return fallbackMsg
		}
		return msgID
	}
	return localizedMsg
}

// Default returns the message msgID in the default language.
func Default(msgID string, templateData map[string]interface{}) string {
	return GetMessage(NewLocalizer(), msgID, templateData, nil)
}
