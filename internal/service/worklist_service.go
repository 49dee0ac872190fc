package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/internal/worklist"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

type studyDataSource interface {
	Search(ctx context.Context, state models.FilterState, window models.DataWindow) ([]models.Study, error)
	FindByUID(ctx context.Context, uid string) (*models.Study, error)
}

// WorklistConfig holds the engine limits and launch settings.
type WorklistConfig struct {
	StudiesLimit          int
	DefaultResultsPerPage int
	PreservedKeys         []string
	Mode                  worklist.ViewerMode
	DataSource            models.DataSourceConfig
}

// WorklistView describes the engine configuration to clients.
type WorklistView struct {
	StudiesLimit          int                     `json:"studies_limit"`
	DefaultResultsPerPage int                     `json:"default_results_per_page"`
	SortableFields        []string                `json:"sortable_fields"`
	PreservedQueryKeys    []string                `json:"preserved_query_keys"`
	Modes                 []string                `json:"modes"`
	DataSource            models.DataSourceConfig `json:"data_source"`
}

// WorklistService drives the study list of every session.
type WorklistService struct {
	studies  studyDataSource
	series   *SeriesService
	sessions *SessionManager
	cfg      WorklistConfig
	defaults models.FilterState
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewWorklistService constructs a WorklistService.
func NewWorklistService(studies studyDataSource, series *SeriesService, sessions *SessionManager, cfg WorklistConfig, metrics *MetricsService, logger *zap.Logger) *WorklistService {
	if cfg.StudiesLimit <= 0 {
		cfg.StudiesLimit = 101
	}
	if cfg.DefaultResultsPerPage <= 0 {
		cfg.DefaultResultsPerPage = 25
	}
	if cfg.Mode.RouteName == "" {
		cfg.Mode = worklist.NewBasicViewer("Basic Viewer", "viewer", "")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorklistService{
		studies:  studies,
		series:   series,
		sessions: sessions,
		cfg:      cfg,
		defaults: worklist.DefaultFilterState(cfg.DefaultResultsPerPage),
		metrics:  metrics,
		logger:   logger,
	}
}

// Defaults returns the state of a fresh worklist.
func (s *WorklistService) Defaults() models.FilterState {
	d := s.defaults
	d.Modalities = []string{}
	return d
}

// Config describes the engine to clients.
func (s *WorklistService) Config() WorklistView {
	return WorklistView{
		StudiesLimit:          s.cfg.StudiesLimit,
		DefaultResultsPerPage: s.cfg.DefaultResultsPerPage,
		SortableFields:        worklist.SortableFields(),
		PreservedQueryKeys:    append([]string{}, s.cfg.PreservedKeys...),
		Modes:                 []string{s.cfg.Mode.DisplayName},
		DataSource:            s.cfg.DataSource,
	}
}

// List resolves the session state against the request query, fetches the current window and
// returns the visible page.
func (s *WorklistService) List(ctx context.Context, sessionID, rawQuery string) (*models.WorklistPage, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	query := worklist.ParseRawQuery(rawQuery)
	params, _ := url.ParseQuery(rawQuery)
	preserved := worklist.PreservedParams(params, s.cfg.PreservedKeys)

	session.mu.Lock()
	state := worklist.Resolve(query, session.filters, s.defaults)
	switch {
	case session.filters == nil:
		s.replaceFilters(session, state)
	case !worklist.Equal(state, *session.filters):
		state = worklist.ApplyChange(*session.filters, state)
		s.replaceFilters(session, state)
	}
	generation := session.generation
	session.mu.Unlock()

	ordered, total, err := s.fetchWindow(ctx, state)
	if err != nil {
		return nil, err
	}
	visible, info := worklist.Paginate(ordered, state, total, s.cfg.StudiesLimit)

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.generation == generation {
		session.rows = ordered
		session.total = total
		session.windowFetched = true
	}

	rows := make([]models.WorklistRow, 0, len(visible))
	for i, study := range visible {
		row := models.WorklistRow{
			Index:       info.Offset + i + 1,
			Study:       study,
			DisplayDate: worklist.FormatStudyDate(study.Date),
			DisplayTime: worklist.FormatStudyTime(study.Time),
			State:       models.RowCollapsed,
			Modes:       []models.ModeLaunch{s.cfg.Mode.Launch(study, state.ConfigURL, preserved)},
		}
		if exp, ok := session.expanded[row.Index]; ok && exp.uid == study.StudyInstanceUID {
			row.State = exp.state
			if exp.state == models.RowExpanded {
				if series, ok := session.series.Get(study.StudyInstanceUID); ok {
					row.Series = worklist.SeriesRows(series)
				}
			}
		}
		rows = append(rows, row)
	}

	return &models.WorklistPage{
		Filters:     state,
		Rows:        rows,
		PageInfo:    info,
		QueryString: worklist.ToQueryString(state, s.defaults, preserved),
		IsFiltering: worklist.IsFiltering(state, s.defaults),
		DefaultSort: worklist.DefaultSort(state, total, s.cfg.StudiesLimit),
		Querying:    session.querying(),
	}, nil
}

func (s *WorklistService) fetchWindow(ctx context.Context, state models.FilterState) ([]models.Study, int, error) {
	window := worklist.DataWindowFor(state, s.cfg.StudiesLimit)
	start := time.Now()
	studies, err := s.studies.Search(ctx, state, window)
	s.metrics.ObserveDBQuery("study_search", time.Since(start))
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query studies")
	}
	total := len(studies)
	return worklist.ApplySort(studies, state, total, s.cfg.StudiesLimit), total, nil
}

// replaceFilters installs state as the session filters. Callers hold session.mu.
func (s *WorklistService) replaceFilters(session *Session, state models.FilterState) {
	session.filters = &state
	session.resetRows()
	s.sessions.schedulePersist(session)
}

func (s *WorklistService) current(session *Session) models.FilterState {
	if session.filters != nil {
		return *session.filters
	}
	return s.Defaults()
}

func (s *WorklistService) update(session *Session, next models.FilterState) *models.FilterUpdate {
	changed := !worklist.Equal(s.current(session), next)
	if changed {
		s.replaceFilters(session, next)
	}
	return &models.FilterUpdate{
		Filters:     next,
		QueryString: worklist.ToQueryString(next, s.defaults, nil),
		Changed:     changed,
	}
}

// SetFilters replaces the filter values. Unless the page number itself moved the page is reset to 1.
func (s *WorklistService) SetFilters(ctx context.Context, sessionID string, next models.FilterState) (*models.FilterUpdate, error) {
	if err := s.validateState(next); err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if next.Modalities == nil {
		next.Modalities = []string{}
	}
	if next.SortDirection == "" {
		next.SortDirection = s.defaults.SortDirection
	}
	if next.ResultsPerPage == 0 {
		next.ResultsPerPage = s.defaults.ResultsPerPage
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	current := s.current(session)
	if worklist.Equal(current, next) {
		return s.update(session, next), nil
	}
	next = worklist.ApplyChange(current, next)
	if next.PageNumber < 1 {
		next.PageNumber = 1
	}
	return s.update(session, next), nil
}

// ChangePage moves to newPage when the fetched window allows it.
func (s *WorklistService) ChangePage(ctx context.Context, sessionID string, newPage int) (*models.FilterUpdate, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	state := s.current(session)
	fetched := session.windowFetched
	total := session.total
	generation := session.generation
	session.mu.Unlock()

	if !fetched {
		ordered, n, err := s.fetchWindow(ctx, state)
		if err != nil {
			return nil, err
		}
		total = n
		session.mu.Lock()
		if session.generation == generation {
			session.rows = ordered
			session.total = n
			session.windowFetched = true
		}
		session.mu.Unlock()
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.generation != generation {
		state = s.current(session)
		total = session.total
	}
	if !worklist.CanChangePage(state, newPage, total, s.cfg.StudiesLimit) {
		return nil, appErrors.Clone(appErrors.ErrPageOutOfRange, fmt.Sprintf("page %d is not reachable from page %d", newPage, state.PageNumber))
	}
	next := state
	next.PageNumber = newPage
	return s.update(session, next), nil
}

// SetResultsPerPage changes the page size and returns to page 1.
func (s *WorklistService) SetResultsPerPage(ctx context.Context, sessionID string, resultsPerPage int) (*models.FilterUpdate, error) {
	if resultsPerPage < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "results per page must be positive")
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	next := s.current(session)
	next.ResultsPerPage = resultsPerPage
	next.PageNumber = 1
	return s.update(session, next), nil
}

// ClearFilters returns the session to a fresh worklist.
func (s *WorklistService) ClearFilters(ctx context.Context, sessionID string) (*models.FilterUpdate, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return s.update(session, s.Defaults()), nil
}

// EndSession cancels outstanding work and forgets the session.
func (s *WorklistService) EndSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.End(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session state")
	}
	return nil
}

// ToggleRow expands or collapses the row at the 1-based index of the fetched window.
func (s *WorklistService) ToggleRow(ctx context.Context, sessionID string, index int) (*models.RowExpansion, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if index < 1 || index > len(session.rows) {
		return nil, appErrors.Clone(appErrors.ErrRowOutOfRange, fmt.Sprintf("row %d is not in the current window", index))
	}
	uid := session.rows[index-1].StudyInstanceUID

	if exp, ok := session.expanded[index]; ok {
		exp.cancel()
		delete(session.expanded, index)
		return &models.RowExpansion{Index: index, StudyInstanceUID: uid, State: models.RowCollapsed}, nil
	}

	if series, ok := session.series.Get(uid); ok {
		s.metrics.RecordSeriesCache(true)
		session.expanded[index] = &rowExpansion{uid: uid, state: models.RowExpanded, cancel: func() {}}
		return &models.RowExpansion{Index: index, StudyInstanceUID: uid, State: models.RowExpanded, Series: worklist.SeriesRows(series)}, nil
	}
	s.metrics.RecordSeriesCache(false)

	// teardown cancels session.ctx under mu before waiting on wg.
	if session.ctx.Err() != nil {
		return &models.RowExpansion{Index: index, StudyInstanceUID: uid, State: models.RowCollapsed}, nil
	}
	fetchCtx, cancel := context.WithCancel(session.ctx)
	exp := &rowExpansion{uid: uid, state: models.RowExpanding, cancel: cancel}
	session.expanded[index] = exp
	session.wg.Add(1)
	go s.loadSeries(fetchCtx, session, index, exp)

	return &models.RowExpansion{Index: index, StudyInstanceUID: uid, State: models.RowExpanding}, nil
}

func (s *WorklistService) loadSeries(ctx context.Context, session *Session, index int, exp *rowExpansion) {
	defer session.wg.Done()
	defer exp.cancel()

	series, err := s.series.Fetch(ctx, exp.uid)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Warn("row stays expanding after series fetch failure",
			zap.String("session_id", session.id), zap.Int("row", index), zap.Error(err))
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.series.Add(exp.uid, series)
	if current, ok := session.expanded[index]; ok && current == exp {
		exp.state = models.RowExpanded
	}
}

// StudySeries returns the table rows of a study's series without touching any session.
func (s *WorklistService) StudySeries(ctx context.Context, studyInstanceUID string) ([]models.SeriesRow, error) {
	series, err := s.series.Fetch(ctx, studyInstanceUID)
	if err != nil {
		return nil, err
	}
	return worklist.SeriesRows(series), nil
}

// Launch returns the viewer links for a study.
func (s *WorklistService) Launch(ctx context.Context, studyInstanceUID, rawQuery string) ([]models.ModeLaunch, error) {
	study, err := s.studies.FindByUID(ctx, studyInstanceUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "study not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study")
	}
	params, _ := url.ParseQuery(rawQuery)
	preserved := worklist.PreservedParams(params, s.cfg.PreservedKeys)
	configURL := ""
	if q := worklist.ParseRawQuery(rawQuery); q.ConfigURL != nil {
		configURL = *q.ConfigURL
	}
	return []models.ModeLaunch{s.cfg.Mode.Launch(*study, configURL, preserved)}, nil
}

// Notify queues a transient notification for the session. Unknown sessions drop it.
func (s *WorklistService) Notify(sessionID string, level models.NotificationLevel, message string) {
	session, ok := s.sessions.Lookup(sessionID)
	if !ok {
		s.logger.Debug("notification dropped for unknown session", zap.String("session_id", sessionID), zap.String("message", message))
		return
	}
	session.notify(level, message, time.Now().UTC())
}

// DrainNotifications returns and clears the queued notifications of the session.
func (s *WorklistService) DrainNotifications(ctx context.Context, sessionID string) ([]models.Notification, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.drain(), nil
}

func (s *WorklistService) validateState(state models.FilterState) error {
	switch state.SortDirection {
	case "", models.SortAscending, models.SortDescending, models.SortNone:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown sort direction %q", state.SortDirection))
	}
	if state.SortBy != "" {
		known := false
		for _, field := range worklist.SortableFields() {
			if field == state.SortBy {
				known = true
				break
			}
		}
		if !known {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown sort field %q", state.SortBy))
		}
	}
	if state.PageNumber < 0 || state.ResultsPerPage < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "page number and results per page must not be negative")
	}
	return nil
}
