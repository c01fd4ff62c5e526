package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/photo-inspector-go/internal/config"
	"github.com/anime-shed/photo-inspector-go/internal/storage"
)

func TestStorageFactory(t *testing.T) {
	cfg := &config.Config{ImageFetchTimeout: time.Second, MaxImageBytes: 1024}
	f := NewStorageFactory(cfg)

	assert.True(t, f.Enabled(HTTPStorage))
	assert.False(t, f.Enabled(AzureStorage))
	assert.False(t, f.Enabled(StorageType("local")))

	fetcher, ok := f.CreateFetcher().(*storage.HTTPImageFetcher)
	require.True(t, ok)
	assert.NotNil(t, fetcher)

	blobs, err := f.CreateBlobStorage()
	require.NoError(t, err)
	assert.Nil(t, blobs)
}

func TestStorageFactory_InvalidBlobCredentials(t *testing.T) {
	f := NewStorageFactory(&config.Config{AzureStorageAccount: "acct", AzureStorageKey: "%%%"})

	assert.True(t, f.Enabled(AzureStorage))
	_, err := f.CreateBlobStorage()
	assert.Error(t, err)
}

func TestAnalyzerFactory(t *testing.T) {
	f := NewComponentFactory(&config.Config{BatchWorkers: 3})

	a, err := f.AnalyzerFactory.CreateAnalyzer()
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, 3, a.Options().MaxWorkers)
	assert.Equal(t, 3, a.Stats().Workers)
}
