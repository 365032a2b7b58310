package user

import "errors"

type UILanguage string

const (
	UILanguageEN UILanguage = "en"
	UILanguageDE UILanguage = "de"
	UILanguageFR UILanguage = "fr"
)

func NewUILanguage(l string) (UILanguage, error) {
	language := UILanguage(l)
	if !language.IsValid() {
		return "", errors.New("invalid language")
	}
	return language, nil
}

func (l UILanguage) IsValid() bool {
	switch l {
	case UILanguageEN, UILanguageDE, UILanguageFR:
		return true
	}
	return false
}
