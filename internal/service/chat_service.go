package service

import (
	"context"

	"drheal-be/internal/dto"
	"drheal-be/pkg/ragchain"
	"drheal-be/pkg/retrieval"
)

type ChatChain interface {
	Run(ctx context.Context, chatType, query string, n int) (*ragchain.Result, error)
}

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	chain ChatChain
}

func NewChatService(chain ChatChain) IChatService {
	return &chatService{chain: chain}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	result, err := s.chain.Run(ctx, req.ChatType, req.Query, req.NResults)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RAGResultItem, 0, len(result.RAGResults))
	for _, r := range result.RAGResults {
		items = append(items, dto.RAGResultItem{
			Name:       r.Name(),
			Type:       r.Type(),
			Similarity: retrieval.Round3(r.Similarity),
		})
	}

	return &dto.ChatResponse{
		Query:      result.Query,
		Response:   result.Response,
		RAGResults: items,
		NResults:   result.NResults,
	}, nil
}
