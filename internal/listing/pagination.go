package listing

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// MaxPage returns the highest numeric page label in the pagination control.
// Any failure degrades to 1 so the section is still crawled as a single page.
func (p *Parser) MaxPage(markup string) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Msg("Pagination probe failed, assuming one page")
			pages = 1
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return 1
	}

	control := doc.Find(p.sel.Pagination).First()
	if control.Length() == 0 {
		return 1
	}

	pages = 1
	control.Find(p.sel.PageLabel).Each(func(_ int, label *goquery.Selection) {
		if !hasClassMatching(label, p.labelClass) {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(label.Text()))
		if err != nil || n < 1 {
			return
		}
		if n > pages {
			pages = n
		}
	})
	return pages
}
