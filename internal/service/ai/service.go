package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/yuchinlin/line-gemini-bot/internal/config"
)

// generativeModel is the slice of *genai.GenerativeModel the responder needs,
// kept small so tests can substitute a fake.
type generativeModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Service turns free text into a generated reply via the Gemini API. Each
// call is stateless: the model receives no conversation history.
type Service struct {
	model  generativeModel
	client *genai.Client
}

// NewService creates the Gemini responder from configuration.
func NewService(ctx context.Context, cfg config.GeminiConfig) (*Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("GEMINI_API_KEY is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Service{
		model:  client.GenerativeModel(cfg.Model),
		client: client,
	}, nil
}

// Close releases the underlying API client.
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Generate sends the prompt verbatim and returns the trimmed reply text. Any
// failure is rendered as reply text rather than returned as an error.
func (s *Service) Generate(ctx context.Context, prompt string) string {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return fmt.Sprintf("發生錯誤：%v", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return fmt.Sprintf("發生錯誤：%v", err)
	}
	return text
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("model returned no candidates")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", errors.New("model returned empty text")
	}
	return text, nil
}
