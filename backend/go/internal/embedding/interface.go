package embedding

import "context"

// Embedding 定义了所有 embedding 模型需要实现的接口。
// 建索引和查询必须使用同一个模型，否则向量不可比较。
type Embedding interface {
	// Embed 为单个文本生成嵌入向量。
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch 为一批文本生成嵌入向量，结果与输入顺序一致。
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ModelType 是一个枚举类型，用于表示不同的模型厂商。
type ModelType string

const (
	Google ModelType = "gemini" // Google GenAI 嵌入
	Ollama ModelType = "ollama" // 本地 Ollama 服务
)
