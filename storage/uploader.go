// Package storage содержит загрузчик файлов в S3-совместимое
// объектное хранилище. Используется для публикации выгрузок сезона.
package storage

import (
	"context"
	"errors"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ErrUploaderDisabled возвращается, когда хранилище не настроено.
var ErrUploaderDisabled = errors.New("file storage is not configured")

type disabledUploader struct{}

// NewDisabledUploader возвращает заглушку: приложение работает без
// объектного хранилища, но любые попытки выгрузки завершаются ошибкой.
func NewDisabledUploader() FileUploader {
	return disabledUploader{}
}

func (disabledUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	return nil, ErrUploaderDisabled
}

func (disabledUploader) Delete(ctx context.Context, key string) error {
	return ErrUploaderDisabled
}

func (disabledUploader) GetPublicURL(key string) string {
	return ""
}
