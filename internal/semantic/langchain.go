package semantic

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainEmbedder wraps langchaingo's embeddings package over an
// OpenAI-compatible LLM client, giving access to any provider
// langchaingo supports without this package depending on each
// provider's SDK directly. Grounded on
// jinterlante1206-AleutianLocal's use of langchaingo alongside
// go-openai for embedding work.
type LangChainEmbedder struct {
	embedder *embeddings.EmbedderImpl
	dim      int
}

func NewLangChainEmbedder(apiKey, modelName string, dim int) (*LangChainEmbedder, error) {
	llm, err := openai.New(openai.WithToken(apiKey), openai.WithModel(modelName))
	if err != nil {
		return nil, fmt.Errorf("semantic: langchain llm client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("semantic: langchain embedder: %w", err)
	}
	if dim <= 0 {
		dim = defaultDimension
	}
	return &LangChainEmbedder{embedder: embedder, dim: dim}, nil
}

func (e *LangChainEmbedder) Dimension() int { return e.dim }

func (e *LangChainEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("semantic: langchain embed documents: %w", err)
	}
	return vectors, nil
}

func (e *LangChainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("semantic: langchain embed query: %w", err)
	}
	return vector, nil
}
