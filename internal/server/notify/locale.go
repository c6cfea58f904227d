package notify

import (
	"strings"

	"golang.org/x/text/language"
)

// LocaleCandidates lists the locales to try for a template, most specific
// first: the locale as given, its canonical BCP 47 form, its base language
// and finally fallback. "fr_FR" gives [fr_FR fr-FR fr en].
func LocaleCandidates(locale, fallback string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	raw := strings.TrimSpace(locale)
	add(raw)

	if tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-")); err == nil && raw != "" {
		add(tag.String())
		if base, conf := tag.Base(); conf != language.No {
			add(base.String())
		}
	}

	add(fallback)
	return out
}
