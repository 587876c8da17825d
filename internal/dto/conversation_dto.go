package dto

type MessageResponse struct {
	Id        string  `json:"id"`
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	AgentUsed *string `json:"agent_used"`
	Timestamp string  `json:"timestamp"`
}

type ConversationResponse struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int64  `json:"message_count"`
}

type ConversationDetailResponse struct {
	Id        string            `json:"id"`
	Title     string            `json:"title"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	Messages  []MessageResponse `json:"messages"`
}

type ConversationChatRequest struct {
	ConversationId *string `json:"conversation_id" validate:"omitempty,uuid"`
	Query          string  `json:"query" validate:"required,min=1,max=1000"`
}

type ConversationChatResponse struct {
	ConversationId       string `json:"conversation_id"`
	MessageId            string `json:"message_id"`
	Response             string `json:"response"`
	AgentUsed            string `json:"agent_used"`
	IsPotentialEmergency bool   `json:"is_potential_emergency"`
}

type PageQuery struct {
	Limit  int `json:"limit" query:"limit" validate:"min=1,max=100"`
	Offset int `json:"offset" query:"offset" validate:"min=0"`
}
