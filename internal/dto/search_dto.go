package dto

// SearchResponse mirrors service.SearchResult. SearchType is "author" for a
// quoted query and "title" otherwise; it is omitted for too-short queries.
type SearchResponse struct {
	Posts      []PostResponse       `json:"posts"`
	Users      []PublicUserResponse `json:"users"`
	SearchType string               `json:"search_type,omitempty"`
}
