// Package i18n resolves message keys such as "USERS.AUTH_ERROR" into user-facing text.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const placeholder = "{}"

type Translator struct {
	catalogs map[string]map[string]string
	names    []string
	matcher  language.Matcher
	fallback string
}

var supported = map[string]language.Tag{
	"EN": language.English,
	"TR": language.Turkish,
}

// New builds a translator over the bundled catalogs. Unknown default languages fall back to EN.
func New(defaultLang string) *Translator {
	fallback := strings.ToUpper(strings.TrimSpace(defaultLang))
	if _, ok := supported[fallback]; !ok {
		fallback = "EN"
	}

	names := []string{fallback}
	for name := range supported {
		if name != fallback {
			names = append(names, name)
		}
	}
	tags := make([]language.Tag, len(names))
	for i, name := range names {
		tags[i] = supported[name]
	}

	return &Translator{
		catalogs: map[string]map[string]string{"EN": en, "TR": tr},
		names:    names,
		matcher:  language.NewMatcher(tags),
		fallback: fallback,
	}
}

// Match picks the best supported catalog for an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return t.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.fallback
	}
	_, idx, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return t.fallback
	}
	return t.names[idx]
}

// Translate renders key in lang, substituting each "{}" with the next param in order.
// Missing keys render as "<key> [MISSING]".
func (t *Translator) Translate(lang, key string, params ...any) string {
	catalog, ok := t.catalogs[strings.ToUpper(lang)]
	if !ok {
		catalog = t.catalogs[t.fallback]
	}

	val, ok := catalog[key]
	if !ok || val == "" {
		return key + " [MISSING]"
	}

	for _, p := range params {
		if !strings.Contains(val, placeholder) {
			break
		}
		val = strings.Replace(val, placeholder, fmt.Sprint(p), 1)
	}
	return val
}

func (t *Translator) DefaultLanguage() string {
	return t.fallback
}
