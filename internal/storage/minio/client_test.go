package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error

	putInfo minioLib.UploadInfo
	putErr  error

	getRC  io.ReadCloser
	getErr error

	removeErr error

	statInfo minioLib.ObjectInfo
	statErr  error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, _ string, _ io.Reader, _ int64, _ minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	return f.putInfo, f.putErr
}
func (f *fakeMinio) GetObject(_ context.Context, _ string, _ string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	return f.getRC, f.getErr
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, _ string, _ minioLib.RemoveObjectOptions) error {
	return f.removeErr
}
func (f *fakeMinio) StatObject(_ context.Context, _ string, _ string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return f.statInfo, f.statErr
}

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "avatars", c.bucket)
}

func TestNewClientWithAPI_CreateBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)
	assert.Equal(t, "avatars", c.bucket)
}

func TestNewClientWithAPI_BucketExistsError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExistsErr: errors.New("boom")}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestClient_Upload(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	err = c.Upload(ctx, "avatars/anna_s", bytes.NewBufferString("png bytes"))
	assert.NoError(t, err)
}

func TestClient_UploadError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true, putErr: errors.New("put failed")}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	err = c.Upload(ctx, "avatars/anna_s", bytes.NewBufferString("png bytes"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload object")
}

func TestClient_Download(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true, getRC: io.NopCloser(bytes.NewBufferString("png bytes"))}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	rc, err := c.Download(ctx, "avatars/anna_s")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	assert.NoError(t, c.Delete(ctx, "avatars/anna_s"))
}

func TestClient_DeleteError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true, removeErr: errors.New("remove failed")}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	err = c.Delete(ctx, "avatars/anna_s")
	assert.Error(t, err)
}

func TestClient_Exists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	exists, err := c.Exists(ctx, "avatars/anna_s")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestClient_ExistsMissing(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true, statErr: minioLib.ErrorResponse{Code: "NoSuchKey"}}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	exists, err := c.Exists(ctx, "avatars/anna_s")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_ExistsError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true, statErr: errors.New("stat failed")}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	_, err = c.Exists(ctx, "avatars/anna_s")
	assert.Error(t, err)
}
