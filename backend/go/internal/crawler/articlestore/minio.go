package articlestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/minio/minio-go/v7"
)

// ObjectPutter is the subset of *minio.Client used by MinioStore.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioStore mirrors bronze records into an object storage bucket.
type MinioStore struct {
	client ObjectPutter
	bucket string
	log    *logger.Logger
	now    func() time.Time
}

// NewMinioStore creates a MinioStore writing into bucket.
func NewMinioStore(client ObjectPutter, bucket string, log *logger.Logger) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, log: log, now: time.Now}
}

// Save uploads the article under the same name the FileStore uses.
func (s *MinioStore) Save(ctx context.Context, article models.Article, dryRun bool) (string, error) {
	name := ObjectName(article, s.now())
	location := fmt.Sprintf("s3://%s/%s", s.bucket, name)
	if dryRun {
		s.log.WithField("object", location).Info("[test mode] article not uploaded")
		return location, nil
	}

	data, err := Encode(article)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload article: %w", err)
	}
	s.log.WithField("object", location).Info("article uploaded")
	return location, nil
}
