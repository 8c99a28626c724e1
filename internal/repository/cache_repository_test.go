package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "noticeboard:", nil)
	ctx := context.Background()

	var dest []int
	assert.ErrorIs(t, repo.Get(ctx, "topNotices", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "topNotices", []int{1}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "topNotices"))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "noticeboard:topNotices", repo.key("topNotices"))
}
