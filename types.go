package colbertdb

// Document is a document to index.
// Ids are assigned by the server and come back on SearchHit.
type Document struct {
	Content  string
	Metadata map[string]string
}

// SearchHit is a single matched document.
type SearchHit struct {
	ID       string
	Content  string
	Metadata map[string]string
	Score    float64
}

// SearchResult holds the hits of one search, in descending relevance as ranked by the server.
type SearchResult struct {
	Query     string
	K         int
	Documents []SearchHit
}
