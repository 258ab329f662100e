// Package catalog discovers crawlable sections from a navigation fragment.
package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/listcrawl/internal/utils/url"
	"github.com/law-makers/listcrawl/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// DefaultLinkSelector matches the catalog anchors of a popular-rubricator block
const DefaultLinkSelector = `a[data-marker="popular-rubricator/link"]`

// Discover parses a hand-supplied navigation fragment and returns one section
// per catalog anchor, in document order. Anchors without a name or an href are
// skipped. A fragment that cannot be parsed yields no sections.
func Discover(fragment, origin, selector string) []models.Section {
	if selector == "" {
		selector = DefaultLinkSelector
	}

	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse catalog fragment")
		return nil
	}
	doc := goquery.NewDocumentFromNode(root)

	base := strings.TrimRight(origin, "/") + "/"
	seen := make(map[string]bool)
	var sections []models.Section

	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		name := strings.Join(strings.Fields(a.Text()), " ")
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if name == "" || href == "" {
			return
		}

		u := urlutil.ResolveURL(base, href)
		if seen[u] {
			log.Debug().Str("url", u).Msg("Duplicate catalog link ignored")
			return
		}
		seen[u] = true
		sections = append(sections, models.Section{Name: name, URL: u})
	})

	log.Debug().Int("sections", len(sections)).Msg("Catalog sections discovered")
	return sections
}

// Filter keeps only sections whose names appear in names. An empty filter keeps
// everything.
func Filter(sections []models.Section, names []string) []models.Section {
	if len(names) == 0 {
		return sections
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}

	var out []models.Section
	for _, s := range sections {
		if want[strings.ToLower(s.Name)] {
			out = append(out, s)
		}
	}
	return out
}
