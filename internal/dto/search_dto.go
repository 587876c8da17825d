package dto

type SearchRequest struct {
	Query      string `json:"query" validate:"required"`
	NResults   int    `json:"n_results" validate:"min=1,max=20"`
	FilterType string `json:"filter_type"`
}

type SearchResultItem struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Id         string  `json:"id"`
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultItem `json:"results"`
	Count   int                `json:"count"`
}

type StatsResponse struct {
	TotalDocuments     int64  `json:"total_documents"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	VectorStore        string `json:"vector_store"`
}

type WebSearchRequest struct {
	Query      string `json:"query" query:"query" validate:"required"`
	MaxResults int    `json:"max_results" query:"max_results" validate:"min=1,max=10"`
}

type WebSearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
	Source  string `json:"source"`
}

type WebSearchResponse struct {
	Query     string            `json:"query"`
	Results   []WebSearchResult `json:"results"`
	Reason    string            `json:"reason,omitempty"`
	Formatted string            `json:"formatted"`
}
