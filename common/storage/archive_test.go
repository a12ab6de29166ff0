package storage

import (
	"bytes"
	"context"
	"io"
	"testing"
)

type memStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStorage) Upload(ctx context.Context, bucket, objectName string, content []byte, contentType string) (string, error) {
	return m.StreamUpload(ctx, bucket, objectName, bytes.NewReader(content), contentType)
}

func (m *memStorage) StreamUpload(_ context.Context, bucket, objectName string, reader io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[bucket+"/"+objectName] = data
	m.types[bucket+"/"+objectName] = contentType
	return objectName, nil
}

func TestPageArchive(t *testing.T) {
	mem := newMemStorage()
	archive := NewPageArchive(mem, "raw-pages", "fincaraiz")

	if err := archive.ArchivePage(context.Background(), "ab12cd34", 2, []byte("<html></html>")); err != nil {
		t.Fatal(err)
	}

	key := "raw-pages/fincaraiz/ab12cd34/page-2.html"
	if got := string(mem.objects[key]); got != "<html></html>" {
		t.Errorf("Expected archived html at %s, got %q", key, got)
	}
	if mem.types[key] != "text/html; charset=utf-8" {
		t.Errorf("Unexpected content type %q", mem.types[key])
	}
}

func TestPageObjectName(t *testing.T) {
	if got := PageObjectName("fincaraiz", "t1", 10); got != "fincaraiz/t1/page-10.html" {
		t.Errorf("Unexpected object name %q", got)
	}
}
