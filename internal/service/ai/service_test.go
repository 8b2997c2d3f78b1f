package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

type fakeModel struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModel) GenerateContent(_ context.Context, _ ...genai.Part) (*genai.GenerateContentResponse, error) {
	return f.resp, f.err
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestGenerateTrimsWhitespace(t *testing.T) {
	svc := &Service{model: &fakeModel{resp: textResponse(genai.Text("  哈囉！\n"))}}

	assert.Equal(t, "哈囉！", svc.Generate(context.Background(), "打個招呼"))
}

func TestGenerateConcatenatesParts(t *testing.T) {
	svc := &Service{model: &fakeModel{resp: textResponse(genai.Text("part one "), genai.Text("part two"))}}

	assert.Equal(t, "part one part two", svc.Generate(context.Background(), "prompt"))
}

func TestGenerateClientError(t *testing.T) {
	svc := &Service{model: &fakeModel{err: errors.New("quota exceeded")}}

	assert.Equal(t, "發生錯誤：quota exceeded", svc.Generate(context.Background(), "prompt"))
}

func TestGenerateNoCandidates(t *testing.T) {
	svc := &Service{model: &fakeModel{resp: &genai.GenerateContentResponse{}}}

	assert.Equal(t, "發生錯誤：model returned no candidates", svc.Generate(context.Background(), "prompt"))
}

func TestGenerateEmptyText(t *testing.T) {
	svc := &Service{model: &fakeModel{resp: textResponse(genai.Text("   \n"))}}

	assert.Equal(t, "發生錯誤：model returned empty text", svc.Generate(context.Background(), "prompt"))
}
