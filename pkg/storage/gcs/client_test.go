package gcs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/angelmondragon/tienda-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	bucket      string
	name        string
	contentType string
	body        string
	err         error
}

func (f *fakeAPI) insert(_ context.Context, bucket, name, contentType string, body io.Reader) error {
	if f.err != nil {
		return f.err
	}
	data, _ := io.ReadAll(body)
	f.bucket, f.name, f.contentType, f.body = bucket, name, contentType, string(data)
	return nil
}

func (f *fakeAPI) bucketExists(context.Context, string) error { return f.err }

func TestUploadReturnsPublicURL(t *testing.T) {
	api := &fakeAPI{}
	client := newClient(api, config.GCSConfig{BucketName: "tienda-proofs", PublicBaseURL: "https://cdn.example.com/"})

	got, err := client.Upload(context.Background(), "/shipments/12/foto entrega.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/tienda-proofs/shipments/12/foto%20entrega.jpg", got)
	assert.Equal(t, "tienda-proofs", api.bucket)
	assert.Equal(t, "shipments/12/foto entrega.jpg", api.name)
	assert.Equal(t, "image/jpeg", api.contentType)
	assert.Equal(t, "jpeg-bytes", api.body)
}

func TestUploadDefaultsAndErrors(t *testing.T) {
	api := &fakeAPI{}
	client := newClient(api, config.GCSConfig{BucketName: "b"})

	_, err := client.Upload(context.Background(), "", "image/png", strings.NewReader("x"))
	require.Error(t, err)

	got, err := client.Upload(context.Background(), "a.bin", "", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/b/a.bin", got)
	assert.Equal(t, "application/octet-stream", api.contentType)

	api.err = errors.New("quota")
	_, err = client.Upload(context.Background(), "a.bin", "", strings.NewReader("x"))
	require.ErrorContains(t, err, "quota")
	require.Error(t, client.Ping(context.Background()))

	var nilClient *Client
	_, err = nilClient.Upload(context.Background(), "a", "b", strings.NewReader(""))
	require.Error(t, err)
}
