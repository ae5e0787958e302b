package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// acronyms stay upper case when rendered as labels
var acronyms = map[string]bool{"TV": true, "OVA": true, "ONA": true}

// Label turns a backend enum like "TV_SHORT" or "NOT_YET_RELEASED" into "TV Short" / "Not Yet Released"
func Label(enum string) string {
	if enum == "" {
		return ""
	}
	// Casers keep state, so each call gets its own
	caser := cases.Title(language.English)
	words := strings.Split(enum, "_")
	for i, w := range words {
		if acronyms[strings.ToUpper(w)] {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = caser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}
