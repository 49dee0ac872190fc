package service

import (
	"context"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/internal/worklist"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

type seriesSource interface {
	ListByStudy(ctx context.Context, studyInstanceUID string) ([]models.Series, error)
}

// SeriesCache is a bounded, concurrency-safe map of study UID to date-sorted series.
type SeriesCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewSeriesCache builds a cache holding at most size studies. Non-positive sizes fall back to 256.
func NewSeriesCache(size int) *SeriesCache {
	if size <= 0 {
		size = 256
	}
	return &SeriesCache{cache: lru.New(size)}
}

// Get returns a copy of the cached series for the study.
func (c *SeriesCache) Get(studyInstanceUID string) ([]models.Series, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(studyInstanceUID)
	if !ok {
		return nil, false
	}
	return append([]models.Series(nil), v.([]models.Series)...), true
}

// Add stores the series for the study, evicting the least recently used entry when full.
func (c *SeriesCache) Add(studyInstanceUID string, series []models.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(studyInstanceUID, append([]models.Series(nil), series...))
}

// Len reports the number of cached studies.
func (c *SeriesCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// SeriesService fetches the series of a study, collapsing concurrent fetches of the same UID.
type SeriesService struct {
	repo    seriesSource
	group   singleflight.Group
	timeout time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSeriesService constructs a SeriesService.
func NewSeriesService(repo seriesSource, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) *SeriesService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeriesService{repo: repo, timeout: timeout, metrics: metrics, logger: logger}
}

// Fetch returns the series of a study sorted by acquisition date. The shared fetch runs on its
// own deadline so one caller giving up does not fail the others; ctx only bounds this caller's wait.
func (s *SeriesService) Fetch(ctx context.Context, studyInstanceUID string) ([]models.Series, error) {
	if studyInstanceUID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "study instance uid is required")
	}

	ch := s.group.DoChan(studyInstanceUID, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		series, err := s.repo.ListByStudy(fetchCtx, studyInstanceUID)
		s.metrics.ObserveDBQuery("series_by_study", time.Since(start))
		s.metrics.RecordSeriesFetch(err)
		if err != nil {
			return nil, err
		}
		return worklist.SortSeries(series), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn("series fetch failed", zap.String("study_instance_uid", studyInstanceUID), zap.Error(res.Err))
			return nil, appErrors.Wrap(res.Err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to fetch series")
		}
		return append([]models.Series(nil), res.Val.([]models.Series)...), nil
	}
}
