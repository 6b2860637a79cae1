package minio

import (
	"context"
	"fmt"

	"PerguntaQueRespondo/backend/go/internal/config"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewClient 创建 MinIO 客户端，并确保 bronze 存储桶存在。
//
// 参数:
//
//	ctx: 上下文，用于健康检查与建桶请求。
//	cfg: MinIO 配置。
//	log: 日志记录器。
//
// 返回值:
//
//	*minio.Client: 可用的客户端。
//	error: 无法连接或无法创建存储桶时返回。
func NewClient(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) (*minio.Client, error) {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("无法创建 MinIO 客户端: %w", err)
	}

	if err := EnsureBucket(ctx, c, cfg.Bucket); err != nil {
		return nil, err
	}
	log.WithFields(map[string]interface{}{"endpoint": cfg.Endpoint, "bucket": cfg.Bucket}).Info("connected to MinIO")
	return c, nil
}

// BucketAPI 是 EnsureBucket 所需的 *minio.Client 方法子集。
type BucketAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// EnsureBucket 在存储桶不存在时创建它。
func EnsureBucket(ctx context.Context, c BucketAPI, bucket string) error {
	exists, err := c.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("MinIO 健康检查失败: %w", err)
	}
	if exists {
		return nil
	}
	if err := c.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
	}
	return nil
}
