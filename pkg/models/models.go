package models

// Placeholder values written in place of absent fields. Downstream consumers
// rely on a fixed schema, so a field is never left empty.
const (
	Placeholder    = "N/A"
	DefaultPrice   = "0"
	DefaultRating  = "0.0"
	DefaultReviews = "no reviews"
)

// Header is the column layout of the output file, in write order.
var Header = []string{"brand", "title", "price", "seller_name", "rating", "reviews_count", "link"}

// LinkColumn names the unique key column in Header.
const LinkColumn = "link"

// Section is one catalog subsection to crawl
type Section struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Record is a single listing extracted from a rendered page
type Record struct {
	Section      string `json:"brand"`
	Title        string `json:"title"`
	Price        string `json:"price"`
	SellerName   string `json:"seller_name"`
	Rating       string `json:"rating"`
	ReviewsCount string `json:"reviews_count"`
	Link         string `json:"link"`
}

// Row returns the record's fields in Header order.
func (r Record) Row() []string {
	return []string{r.Section, r.Title, r.Price, r.SellerName, r.Rating, r.ReviewsCount, r.Link}
}

// HasKey reports whether the record carries a usable dedup key.
func (r Record) HasKey() bool {
	return r.Link != "" && r.Link != Placeholder
}
