package domain

// CacheMeta carries the HTTP validators and type info stored next to a
// cached body so a later request can be made conditional.
type CacheMeta struct {
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	ContentType  string `json:"content_type"`
	Encoding     string `json:"encoding,omitempty"`
}

// FetchResult is the outcome of a single polite fetch. An empty Body means
// "no content" (robots deny, non-HTML, or unrecoverable failure) and is
// never an error condition for callers.
type FetchResult struct {
	URL  string
	Body string
	Meta CacheMeta
}

// Page is a fetched HTML page handed to the extraction pipeline.
type Page struct {
	URL  string
	Body string
}

// PersonCandidate is one weighted person sighting emitted by an extractor.
type PersonCandidate struct {
	First  string
	Last   string
	Title  string
	Weight int
	Source string
}

// ScoredCandidate is the merged form of all sightings of one person.
type ScoredCandidate struct {
	First  string
	Last   string
	Title  string
	Weight int
}

// Evidence records what was seen while processing a domain.
type Evidence struct {
	EmailsFound   []string `json:"emails_found"`
	PagesSearched []string `json:"pages_searched"`
}

// ResultRecord is the per-domain output. Owner and Email may be empty:
// "nothing found" is a normal terminal state.
type ResultRecord struct {
	Domain   string   `json:"domain"`
	Company  string   `json:"company"`
	Owner    string   `json:"owner"`
	Email    string   `json:"email"`
	Evidence Evidence `json:"evidence"`
}
