package listing

import (
	"strings"

	"github.com/law-makers/listcrawl/pkg/models"
)

// Clean collapses runs of whitespace (including non-breaking spaces) into a
// single ASCII space and trims the ends. Empty input yields the placeholder.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return models.Placeholder
	}
	return text
}
