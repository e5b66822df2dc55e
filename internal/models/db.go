package models

// JobRecord is one accepted listing card. It is a value type and is never
// mutated after the extractor builds it.
type JobRecord struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// SearchParams is the stored (country, term) pair a run searches for.
type SearchParams struct {
	Country string `json:"country"`
	Term    string `json:"search_term"`
}
