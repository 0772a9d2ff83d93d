package semantic

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder wraps the OpenAI embeddings endpoint via
// sashabaranov/go-openai, grounded on jinterlante1206-AleutianLocal's
// embedding-client usage of the same library.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

func NewOpenAIEmbedder(apiKey, modelName string) *OpenAIEmbedder {
	model, dim := resolveOpenAIModel(modelName)
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  model,
		dim:    dim,
	}
}

func resolveOpenAIModel(name string) (openai.EmbeddingModel, int) {
	switch name {
	case "", "text-embedding-3-small":
		return openai.SmallEmbedding3, 1536
	case "text-embedding-3-large":
		return openai.LargeEmbedding3, 3072
	default:
		return openai.EmbeddingModel(name), defaultDimension
	}
}

func (e *OpenAIEmbedder) Dimension() int { return e.dim }

func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: openai embed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("semantic: openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
