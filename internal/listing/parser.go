// Package listing extracts records and pagination from rendered listing pages.
package listing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/listcrawl/internal/utils/url"
	"github.com/law-makers/listcrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// Selectors describes where each field lives in a listing page.
// Class patterns are regular expressions matched against single class tokens.
type Selectors struct {
	Item        string
	TitleLink   string
	Price       string
	SellerBlock string // class pattern
	SellerName  string
	Rating      string
	Reviews     string

	Pagination     string
	PageLabel      string
	PageLabelClass string // class pattern
}

// DefaultSelectors matches the markup the crawler was written against.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:           `div[data-marker="item"]`,
		TitleLink:      `a[data-marker="item-title"]`,
		Price:          `meta[itemprop="price"]`,
		SellerBlock:    `style-root-`,
		SellerName:     `p:not([data-marker])`,
		Rating:         `span[data-marker="seller-info/score"]`,
		Reviews:        `p[data-marker="seller-info/summary"]`,
		Pagination:     `ul[data-marker="pagination-button"]`,
		PageLabel:      `span`,
		PageLabelClass: `styles-module-text`,
	}
}

// Parser turns rendered markup into records. It is safe for concurrent use.
type Parser struct {
	origin      string
	sel         Selectors
	sellerClass *regexp.Regexp
	labelClass  *regexp.Regexp
}

// NewParser builds a Parser. origin is prefixed to relative listing links.
func NewParser(origin string, sel Selectors) (*Parser, error) {
	seller, err := regexp.Compile(sel.SellerBlock)
	if err != nil {
		return nil, fmt.Errorf("invalid seller block pattern: %w", err)
	}
	label, err := regexp.Compile(sel.PageLabelClass)
	if err != nil {
		return nil, fmt.Errorf("invalid page label pattern: %w", err)
	}
	return &Parser{
		origin:      strings.TrimRight(origin, "/"),
		sel:         sel,
		sellerClass: seller,
		labelClass:  label,
	}, nil
}

// Records extracts one record per listing container on the page. A container
// that fails to parse is skipped; the rest of the page is still returned.
func (p *Parser) Records(section, markup string) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	var records []models.Record
	doc.Find(p.sel.Item).Each(func(i int, item *goquery.Selection) {
		rec, err := p.record(section, item)
		if err != nil {
			log.Debug().Err(err).Int("index", i).Str("section", section).Msg("Skipping listing")
			return
		}
		records = append(records, rec)
	})
	return records, nil
}

func (p *Parser) record(section string, item *goquery.Selection) (rec models.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listing panicked: %v", r)
		}
	}()

	rec = models.Record{
		Section:      section,
		Title:        models.Placeholder,
		Price:        models.DefaultPrice,
		SellerName:   models.Placeholder,
		Rating:       models.DefaultRating,
		ReviewsCount: models.DefaultReviews,
		Link:         models.Placeholder,
	}

	if title := item.Find(p.sel.TitleLink).First(); title.Length() > 0 {
		href, ok := title.Attr("href")
		if !ok {
			return rec, fmt.Errorf("title link has no href")
		}
		rec.Title = Clean(title.Text())
		rec.Link = urlutil.ResolveURL(p.origin+"/", strings.TrimSpace(href))
	}

	if price := item.Find(p.sel.Price).First(); price.Length() > 0 {
		content, ok := price.Attr("content")
		if !ok {
			return rec, fmt.Errorf("price tag has no content")
		}
		if content = strings.TrimSpace(content); content != "" {
			rec.Price = content
		}
	}

	if seller := p.sellerBlock(item); seller != nil {
		if name := seller.Find(p.sel.SellerName).First(); name.Length() > 0 {
			rec.SellerName = Clean(name.Text())
		}
		if rating := seller.Find(p.sel.Rating).First(); rating.Length() > 0 {
			rec.Rating = Clean(rating.Text())
		}
		if reviews := seller.Find(p.sel.Reviews).First(); reviews.Length() > 0 {
			rec.ReviewsCount = Clean(reviews.Text())
		}
	}

	return rec, nil
}

// sellerBlock returns the first div whose class list contains a token matching
// the seller pattern.
func (p *Parser) sellerBlock(item *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	item.Find("div[class]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if hasClassMatching(div, p.sellerClass) {
			found = div
			return false
		}
		return true
	})
	return found
}

func hasClassMatching(s *goquery.Selection, re *regexp.Regexp) bool {
	class, _ := s.Attr("class")
	for _, token := range strings.Fields(class) {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}
