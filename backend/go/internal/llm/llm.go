package llm

import (
	"context"
	"fmt"

	"PerguntaQueRespondo/backend/go/internal/config"
)

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
// 调用是单轮的：输入一个提示词，返回生成的文本。
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
//
// 参数:
//
//	ctx: 上下文，用于创建底层客户端。
//	provider: 提供方名称，目前只支持 "gemini"。
//	apiKey: API 密钥。
//	gen: 模型名称与采样参数。
//
// 返回值:
//
//	*Gemini: 新创建的客户端，调用方负责 Close。
//	error: 不支持的提供方或无法创建客户端时返回。
func NewClient(ctx context.Context, provider, apiKey string, gen config.GenerationConfig) (*Gemini, error) {
	switch provider {
	case "gemini", "":
		return NewGemini(ctx, apiKey, gen)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
