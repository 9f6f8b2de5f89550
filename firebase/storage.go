package firebase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"farmstore-backend/storage"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
)

// objects is the slice of a bucket the slot backend needs.
type objects interface {
	read(ctx context.Context, path string) ([]byte, error)
	write(ctx context.Context, path string, data []byte) error
}

type bucketObjects struct {
	bucket *gcs.BucketHandle
}

func (b bucketObjects) read(ctx context.Context, path string) ([]byte, error) {
	r, err := b.bucket.Object(path).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (b bucketObjects) write(ctx context.Context, path string, data []byte) error {
	wc := b.bucket.Object(path).NewWriter(ctx)
	wc.ContentType = "application/json"

	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload: %w", err)
	}
	return nil
}

// BucketBackend keeps storage slots as JSON objects in a Firebase Storage
// bucket, one object per slot under slots/<namespace>/<key>.json.
type BucketBackend struct {
	objects objects
}

func NewBucketBackend(ctx context.Context, app *firebase.App, bucketName string) (*BucketBackend, error) {
	if bucketName == "" {
		return nil, errors.New("FIREBASE_STORAGE_BUCKET not set")
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, err
	}

	return &BucketBackend{objects: bucketObjects{bucket: bucket}}, nil
}

func (b *BucketBackend) Slot(namespace, key string) storage.Slot {
	return bucketSlot{
		objects: b.objects,
		path:    objectPath(namespace, key),
	}
}

func objectPath(namespace, key string) string {
	return fmt.Sprintf("slots/%s/%s.json", sanitizeSegment(namespace), sanitizeSegment(key))
}

type bucketSlot struct {
	objects objects
	path    string
}

func (s bucketSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.objects.read(ctx, s.path)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, err
}

func (s bucketSlot) Save(ctx context.Context, data []byte) error {
	if err := s.objects.write(ctx, s.path, data); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
