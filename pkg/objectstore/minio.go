package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound is returned when the requested key, or the bucket holding
// it, does not exist.
var ErrObjectNotFound = errors.New("object not found")

type Client struct {
	mc *minio.Client
}

func NewMinIO(endpoint, access, secret string, useTLS bool) (*Client, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: useTLS,
	})
	if err != nil {
		return nil, err
	}
	return &Client{mc: mc}, nil
}

// GetObject downloads the full object content.
func (c *Client) GetObject(ctx context.Context, bucket, name string) ([]byte, error) {
	object, err := c.mc.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(err)
	}
	defer object.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, object); err != nil {
		return nil, translate(err)
	}
	return buf.Bytes(), nil
}

func translate(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return ErrObjectNotFound
	}
	return err
}
