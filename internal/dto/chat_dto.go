package dto

type ChatRequest struct {
	Query    string `json:"query" validate:"required"`
	NResults int    `json:"n_results" validate:"min=1,max=10"`
	ChatType string `json:"chat_type"`
}

type RAGResultItem struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Similarity float64 `json:"similarity"`
}

type ChatResponse struct {
	Query      string          `json:"query"`
	Response   string          `json:"response"`
	RAGResults []RAGResultItem `json:"rag_results"`
	NResults   int             `json:"n_results"`
}
