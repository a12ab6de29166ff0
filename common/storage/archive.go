package storage

import (
	"context"
	"fmt"
)

// PageArchive keeps a copy of raw result pages so markup changes on the
// target site can be diagnosed after the fact.
type PageArchive interface {
	ArchivePage(ctx context.Context, taskID string, page int, html []byte) error
}

type bucketArchive struct {
	storage StorageService
	bucket  string
	prefix  string
}

func NewPageArchive(storage StorageService, bucket, prefix string) PageArchive {
	return &bucketArchive{
		storage: storage,
		bucket:  bucket,
		prefix:  prefix,
	}
}

// PageObjectName returns "<prefix>/<taskID>/page-<n>.html".
func PageObjectName(prefix, taskID string, page int) string {
	return fmt.Sprintf("%s/%s/page-%d.html", prefix, taskID, page)
}

func (a *bucketArchive) ArchivePage(ctx context.Context, taskID string, page int, html []byte) error {
	_, err := a.storage.Upload(ctx, a.bucket, PageObjectName(a.prefix, taskID, page), html, "text/html; charset=utf-8")
	return err
}

type NopArchive struct{}

func (NopArchive) ArchivePage(context.Context, string, int, []byte) error {
	return nil
}
