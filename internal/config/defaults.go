package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	DefaultOrigin        = "https://www.avito.ru"
	DefaultSectionsFile  = "sections.html"
	DefaultLinkSelector  = `a[data-marker="popular-rubricator/link"]`
	DefaultOutputPath    = "listings.csv"
	DefaultContentMarker = `div[data-marker="item"]`

	DefaultFetcher         = FetcherBrowser
	DefaultContentTimeout  = 10 * time.Second
	DefaultSettleDelay     = 2 * time.Second
	DefaultNavigateTimeout = 30 * time.Second
	DefaultProbeDelayMin   = 3 * time.Second
	DefaultProbeDelayMax   = 5 * time.Second
	DefaultPageDelayMin    = 3 * time.Second
	DefaultPageDelayMax    = 6 * time.Second

	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultHeadless       = true
	DefaultStartAttempts  = 3
	DefaultRateLimitRPS   = 0.5
	DefaultRateLimitBurst = 1

	DefaultSellerNameSelector = `p:not([data-marker])`
	DefaultPostgresTable      = "listings"
	DefaultRedisKey           = "listcrawl:links"
)

// Fetcher modes
const (
	FetcherBrowser = "browser"
	FetcherHTTP    = "http"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "LISTCRAWL_"
