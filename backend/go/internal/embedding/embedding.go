package embedding

import (
	"context"
	"fmt"

	"PerguntaQueRespondo/backend/go/internal/config"
)

// Model 是持有需要释放资源的 Embedding。
type Model interface {
	Embedding
	Close() error
}

// New 根据配置创建 Embedding 模型实例。
//
// 参数:
//
//	ctx: 上下文，用于创建底层客户端。
//	cfg: embedding 配置，provider 为 "gemini" 或 "ollama"。
//
// 返回值:
//
//	Model: 新创建的模型实例。
//	error: 如果提供商不支持或模型初始化失败，则返回错误。
func New(ctx context.Context, cfg config.EmbeddingConfig) (Model, error) {
	switch ModelType(cfg.Provider) {
	case Google:
		return NewGoogleModel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case Ollama:
		return NewOllamaModel(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
