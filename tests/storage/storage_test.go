package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStorageInterfaceCompliance(t *testing.T) {
	var _ storage.Storage = (*storage.LocalStorage)(nil)
	var _ storage.Storage = (*storage.AzureBlobStorage)(nil)
}

func TestNewStorage_Factory(t *testing.T) {
	t.Run("local mode", func(t *testing.T) {
		store, err := storage.NewStorage(&config.StorageConfig{
			Mode:          "local",
			LocalBasePath: filepath.Join(t.TempDir(), "exports"),
		}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &storage.LocalStorage{}, store)
	})

	t.Run("azure mode requires connection string", func(t *testing.T) {
		_, err := storage.NewStorage(&config.StorageConfig{Mode: "azure"}, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection string")
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := storage.NewStorage(&config.StorageConfig{Mode: "ftp"}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("projectId,name,status\n1,Depot rewire,planning\n")
	storagePath, size, err := ls.Upload(ctx, "projects-export.csv", "text/csv", bytes.NewReader(content))
	require.NoError(t, err)
	assert.EqualValues(t, len(content), size)
	assert.Equal(t, ".csv", filepath.Ext(storagePath))

	reader, err := ls.Download(ctx, storagePath)
	require.NoError(t, err)
	defer reader.Close()

	downloaded, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, downloaded)

	require.NoError(t, ls.Delete(ctx, storagePath))

	_, err = ls.Download(ctx, storagePath)
	assert.Error(t, err)
}

func TestLocalStorage_CreatesBasePath(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), "nested", "exports")

	_, err := storage.NewLocalStorage(basePath)
	require.NoError(t, err)

	info, err := os.Stat(basePath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStorage_Download_Missing(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	reader, err := ls.Download(context.Background(), "aa/bb/missing.csv")
	assert.Error(t, err)
	assert.Nil(t, reader)
	assert.Contains(t, err.Error(), "file not found")
}

func TestLocalStorage_Delete_Idempotent(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	storagePath, _, err := ls.Upload(ctx, "twice.csv", "text/csv", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, ls.Delete(ctx, storagePath))
	assert.NoError(t, ls.Delete(ctx, storagePath))
}

func TestLocalStorage_UniquePathsForSameFilename(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	paths := make(map[string]bool)
	for i := 0; i < 5; i++ {
		storagePath, _, err := ls.Upload(ctx, "export.csv", "text/csv", bytes.NewReader([]byte("row")))
		require.NoError(t, err)
		assert.False(t, paths[storagePath])
		paths[storagePath] = true
	}
	assert.Len(t, paths, 5)
}
