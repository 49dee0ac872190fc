// Package worklist holds the pure study list engine: filter state parsing and merging,
// client-side sorting, rolling window pagination and query string serialization.
package worklist

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

// Query parameter names in their canonical lower-case form.
const (
	KeyPatientName    = "patientname"
	KeyMRN            = "mrn"
	KeyStartDate      = "startdate"
	KeyEndDate        = "enddate"
	KeyDescription    = "description"
	KeyModalities     = "modalities"
	KeyAccession      = "accession"
	KeySortBy         = "sortby"
	KeySortDirection  = "sortdirection"
	KeyPageNumber     = "pagenumber"
	KeyResultsPerPage = "resultsperpage"
	KeyDataSources    = "datasources"
	KeyConfigURL      = "configurl"
)

// FilterQuery is the subset of filter values present in a request. Nil fields were
// absent or empty and fall through to the next source during Resolve.
type FilterQuery struct {
	PatientName    *string
	MRN            *string
	StartDate      *string
	EndDate        *string
	Description    *string
	Modalities     []string
	Accession      *string
	SortBy         *string
	SortDirection  *string
	PageNumber     *int
	ResultsPerPage *int
	DataSources    *string
	ConfigURL      *string
}

// Empty reports whether no recognised key was present.
func (q FilterQuery) Empty() bool {
	return q.PatientName == nil && q.MRN == nil && q.StartDate == nil && q.EndDate == nil &&
		q.Description == nil && q.Modalities == nil && q.Accession == nil && q.SortBy == nil &&
		q.SortDirection == nil && q.PageNumber == nil && q.ResultsPerPage == nil &&
		q.DataSources == nil && q.ConfigURL == nil
}

// ParseFilterState reads filter values from already decoded query parameters.
// Keys are matched case-insensitively; when several spellings of one key are present the
// lexically last spelling wins.
func ParseFilterState(params url.Values) FilterQuery {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lowered := make(map[string]string, len(keys))
	for _, key := range keys {
		values := params[key]
		if len(values) == 0 {
			continue
		}
		lowered[strings.ToLower(key)] = values[len(values)-1]
	}
	return fromLowered(lowered)
}

// ParseRawQuery reads filter values from a raw query string, keeping document order so
// the last occurrence of a key wins regardless of its spelling. Malformed pairs are skipped.
func ParseRawQuery(raw string) FilterQuery {
	lowered := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		lowered[strings.ToLower(k)] = v
	}
	return fromLowered(lowered)
}

func fromLowered(params map[string]string) FilterQuery {
	str := func(key string) *string {
		v, ok := params[key]
		if !ok || v == "" {
			return nil
		}
		return &v
	}

	q := FilterQuery{
		PatientName:    str(KeyPatientName),
		MRN:            str(KeyMRN),
		StartDate:      str(KeyStartDate),
		EndDate:        str(KeyEndDate),
		Description:    str(KeyDescription),
		Accession:      str(KeyAccession),
		SortBy:         str(KeySortBy),
		SortDirection:  str(KeySortDirection),
		PageNumber:     parseNumeric(params[KeyPageNumber]),
		ResultsPerPage: parseNumeric(params[KeyResultsPerPage]),
		DataSources:    str(KeyDataSources),
		ConfigURL:      str(KeyConfigURL),
	}
	if raw := params[KeyModalities]; raw != "" {
		q.Modalities = splitModalities(raw)
	}
	return q
}

// parseNumeric accepts only plain digit strings.
func parseNumeric(raw string) *int {
	if raw == "" {
		return nil
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func splitModalities(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// DefaultFilterState returns the state of a fresh worklist.
func DefaultFilterState(resultsPerPage int) models.FilterState {
	return models.FilterState{
		Modalities:     []string{},
		SortDirection:  models.SortNone,
		PageNumber:     1,
		ResultsPerPage: resultsPerPage,
	}
}

// Resolve merges the request values over the session state and the defaults, key by key.
// A nil session means nothing was persisted.
func Resolve(query FilterQuery, session *models.FilterState, defaults models.FilterState) models.FilterState {
	base := defaults
	if session != nil {
		base = *session
	}

	state := models.FilterState{
		PatientName:    pick(query.PatientName, base.PatientName),
		MRN:            pick(query.MRN, base.MRN),
		Description:    pick(query.Description, base.Description),
		Accession:      pick(query.Accession, base.Accession),
		SortBy:         pick(query.SortBy, base.SortBy),
		SortDirection:  models.SortDirection(pick(query.SortDirection, string(base.SortDirection))),
		DataSources:    pick(query.DataSources, base.DataSources),
		ConfigURL:      pick(query.ConfigURL, base.ConfigURL),
		PageNumber:     pickInt(query.PageNumber, base.PageNumber),
		ResultsPerPage: pickInt(query.ResultsPerPage, base.ResultsPerPage),
		StudyDate: models.StudyDateRange{
			StartDate: pickPtr(query.StartDate, base.StudyDate.StartDate),
			EndDate:   pickPtr(query.EndDate, base.StudyDate.EndDate),
		},
	}

	switch {
	case query.Modalities != nil:
		state.Modalities = append([]string{}, query.Modalities...)
	case base.Modalities != nil:
		state.Modalities = append([]string{}, base.Modalities...)
	default:
		state.Modalities = []string{}
	}

	if state.SortDirection == "" {
		state.SortDirection = defaults.SortDirection
	}
	if state.PageNumber < 1 {
		state.PageNumber = 1
	}
	if state.ResultsPerPage <= 0 {
		state.ResultsPerPage = defaults.ResultsPerPage
	}
	return state
}

func pick(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

func pickInt(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func pickPtr(v *string, fallback *string) *string {
	if v != nil {
		s := *v
		return &s
	}
	if fallback != nil {
		s := *fallback
		return &s
	}
	return nil
}

// ApplyChange returns next with the page reset applied: unless the page number itself
// moved, the result lands on page 1.
func ApplyChange(current, next models.FilterState) models.FilterState {
	if current.PageNumber == next.PageNumber {
		next.PageNumber = 1
	}
	return next
}

// Equal compares two filter states treating nil and empty modality sets alike.
func Equal(a, b models.FilterState) bool {
	if a.PatientName != b.PatientName || a.MRN != b.MRN || a.Description != b.Description ||
		a.Accession != b.Accession || a.SortBy != b.SortBy || a.SortDirection != b.SortDirection ||
		a.PageNumber != b.PageNumber || a.ResultsPerPage != b.ResultsPerPage ||
		a.DataSources != b.DataSources || a.ConfigURL != b.ConfigURL {
		return false
	}
	if !equalPtr(a.StudyDate.StartDate, b.StudyDate.StartDate) || !equalPtr(a.StudyDate.EndDate, b.StudyDate.EndDate) {
		return false
	}
	if len(a.Modalities) != len(b.Modalities) {
		return false
	}
	for i := range a.Modalities {
		if a.Modalities[i] != b.Modalities[i] {
			return false
		}
	}
	return true
}

func equalPtr(a, b *string) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}

// IsFiltering reports whether the state differs from a fresh worklist. The config URL is
// carried along with the state but is not a filter.
func IsFiltering(state, defaults models.FilterState) bool {
	state.ConfigURL = defaults.ConfigURL
	return !Equal(state, defaults)
}
