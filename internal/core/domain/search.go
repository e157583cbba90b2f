package domain

// SnippetUnavailable is returned in place of a highlight when the search
// engine produced no fragment for a hit.
const SnippetUnavailable = "N/A"

// Hit is a single ranked search result. Snippet carries one highlighted
// fragment with the raw pre/post markers still in place; presentation decides
// how to render them.
type Hit struct {
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet"`
}

// SearchResult is the full response for one keyword query. Hits keep the
// engine's native relevance order; Total counts all matches, not just the
// returned page.
type SearchResult struct {
	Total int64 `json:"total"`
	Hits  []Hit `json:"hits"`
}
