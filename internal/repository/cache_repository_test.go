package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	var dest map[string]string
	err := repo.Get(ctx, "worklist:session:abc:filters", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "k", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "k"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "worklist:*"))
	assert.NoError(t, repo.Close())
}
