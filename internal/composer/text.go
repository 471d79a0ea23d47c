package composer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Translation is one locale's rendering of a Text.
type Translation struct {
	Locale string
	Value  string
}

// Text is a human-readable field that is either a plain string or a locale map.
type Text struct {
	Plain        string
	Translations []Translation
	Localized    bool
}

// UnmarshalJSON accepts a string or an object of strings.
func (text *Text) UnmarshalJSON(data []byte) error {
	trimmedData := bytes.TrimSpace(data)
	if len(trimmedData) > 0 && trimmedData[0] == '{' {
		var localeFields Fields
		if decodeError := json.Unmarshal(trimmedData, &localeFields); decodeError != nil {
			return decodeError
		}
		*text = Text{Localized: true}
		for _, locale := range localeFields.Keys() {
			value, isString := localeFields.GetString(locale)
			if !isString {
				return fmt.Errorf("translation %q is not a string", locale)
			}
			text.Translations = append(text.Translations, Translation{Locale: locale, Value: value})
		}
		return nil
	}
	var plain string
	if decodeError := json.Unmarshal(trimmedData, &plain); decodeError != nil {
		return decodeError
	}
	*text = Text{Plain: plain}
	return nil
}

// MarshalJSON writes the text in the shape it was read in.
func (text Text) MarshalJSON() ([]byte, error) {
	if !text.Localized {
		return encodeValue(text.Plain)
	}
	var localeFields Fields
	for _, translation := range text.Translations {
		if setError := localeFields.SetValue(translation.Locale, translation.Value); setError != nil {
			return nil, setError
		}
	}
	return localeFields.MarshalJSON()
}

// Map returns a copy of text with transform applied to every rendering.
func (text Text) Map(transform func(string) string) Text {
	if !text.Localized {
		return Text{Plain: transform(text.Plain)}
	}
	mapped := Text{Localized: true, Translations: make([]Translation, 0, len(text.Translations))}
	for _, translation := range text.Translations {
		mapped.Translations = append(mapped.Translations, Translation{Locale: translation.Locale, Value: transform(translation.Value)})
	}
	return mapped
}

// Lookup returns the rendering for locale, or the plain string for non-localized text.
func (text Text) Lookup(locale string) (string, bool) {
	if !text.Localized {
		return text.Plain, true
	}
	for _, translation := range text.Translations {
		if translation.Locale == locale {
			return translation.Value, true
		}
	}
	return "", false
}
