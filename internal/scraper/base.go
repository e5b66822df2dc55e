// Define an interface for all scrapers
// Ensure consistency

package scraper

import (
	"context"

	"go-jobsearch-rpa/internal/dom"
	"go-jobsearch-rpa/internal/models"
)

// Query is what one run searches for.
type Query struct {
	Country  string
	Term     string
	Keywords []string
}

// Scraper defines the interface that a site scraper must implement
type Scraper interface {
	// Scrape drives page through the site and returns the accepted records.
	// Records gathered before a fatal error or a restart are returned with it.
	Scrape(ctx context.Context, page dom.Page, q Query) ([]models.JobRecord, error)

	// Name is the site name (Glassdoor, ...)
	Name() string
}
