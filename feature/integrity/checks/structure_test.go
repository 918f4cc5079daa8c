package checks

import (
	"context"
	"testing"

	"listing-mirror/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var folders = []string{"bls_data", "datausa/"}

func TestCheckStructure(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "mirror").Return(false, nil)

		_, err := CheckStructure(context.Background(), mockClient, "mirror", folders)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("All Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "mirror").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "mirror", mock.Anything).Return(mocks.ObjectChannel())

		missing, err := CheckStructure(context.Background(), mockClient, "mirror", folders)
		assert.NoError(t, err)
		assert.Equal(t, folders, missing)
	})

	t.Run("All Present", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "mirror").Return(true, nil)

		for _, prefix := range []string{"bls_data/", "datausa/"} {
			prefix := prefix
			mockClient.On("ListObjects", mock.Anything, "mirror", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
				return opts.Prefix == prefix
			})).Return(mocks.ObjectChannel(minio.ObjectInfo{Key: prefix + "file"}))
		}

		missing, err := CheckStructure(context.Background(), mockClient, "mirror", folders)
		assert.NoError(t, err)
		assert.Len(t, missing, 0)
	})
}

func TestFixStructure(t *testing.T) {
	logger := zap.NewNop()
	mockClient := new(mocks.Client)

	mockClient.On("PutObject", mock.Anything, "mirror", "bls_data/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := FixStructure(context.Background(), mockClient, "mirror", logger, []string{"bls_data"})
	assert.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}
