package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

func TestSeriesServiceSharesInFlightFetch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	repo := &mockSeriesSource{
		series: map[string][]models.Series{
			"1.2.3": {
				{SeriesInstanceUID: "late", SeriesDate: "20240102"},
				{SeriesInstanceUID: "early", SeriesDate: "20240101"},
			},
		},
		release: release,
	}
	svc := NewSeriesService(repo, time.Second, nil, nil)

	var wg sync.WaitGroup
	results := make([][]models.Series, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			series, err := svc.Fetch(context.Background(), "1.2.3")
			assert.NoError(t, err)
			results[i] = series
		}(i)
	}

	require.Eventually(t, func() bool { return repo.callCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, repo.callCount())
	for _, series := range results {
		require.Len(t, series, 2)
		assert.Equal(t, "early", series[0].SeriesInstanceUID)
	}
}

func TestSeriesServiceCallerCancellation(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	repo := &mockSeriesSource{series: map[string][]models.Series{}, release: release}
	svc := NewSeriesService(repo, time.Second, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Fetch(ctx, "1.2.3")
		done <- err
	}()

	require.Eventually(t, func() bool { return repo.callCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	close(release)
}

func TestSeriesServiceWrapsFailure(t *testing.T) {
	repo := &mockSeriesSource{err: errors.New("boom")}
	svc := NewSeriesService(repo, time.Second, nil, nil)

	_, err := svc.Fetch(context.Background(), "1.2.3")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)

	_, err = svc.Fetch(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSeriesCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewSeriesCache(2)
	cache.Add("a", []models.Series{{SeriesInstanceUID: "a1"}})
	cache.Add("b", []models.Series{{SeriesInstanceUID: "b1"}})

	_, ok := cache.Get("a")
	require.True(t, ok)
	cache.Add("c", []models.Series{{SeriesInstanceUID: "c1"}})

	_, ok = cache.Get("b")
	assert.False(t, ok)
	got, ok := cache.Get("a")
	require.True(t, ok)
	got[0].SeriesInstanceUID = "mutated"

	again, _ := cache.Get("a")
	assert.Equal(t, "a1", again[0].SeriesInstanceUID)
	assert.Equal(t, 2, cache.Len())
}
