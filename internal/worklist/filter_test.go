package worklist

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

func strPtr(v string) *string { return &v }

func TestParseFilterStateEmptyOmitsEverything(t *testing.T) {
	q := ParseFilterState(url.Values{})
	assert.True(t, q.Empty())
	assert.Equal(t, FilterQuery{}, q)

	q = ParseRawQuery("")
	assert.True(t, q.Empty())
}

func TestParseFilterStateCaseInsensitiveKeys(t *testing.T) {
	q := ParseFilterState(url.Values{
		"PatientName":    {"DOE^JOHN"},
		"MODALITIES":     {"CT,,MR"},
		"pageNumber":     {"3"},
		"ResultsPerPage": {"50"},
		"StartDate":      {"20240101"},
		"sortBy":         {"patientName"},
		"configUrl":      {"https://example.org/config.json"},
		"description":    {""},
	})

	require.NotNil(t, q.PatientName)
	assert.Equal(t, "DOE^JOHN", *q.PatientName)
	assert.Equal(t, []string{"CT", "MR"}, q.Modalities)
	require.NotNil(t, q.PageNumber)
	assert.Equal(t, 3, *q.PageNumber)
	require.NotNil(t, q.ResultsPerPage)
	assert.Equal(t, 50, *q.ResultsPerPage)
	assert.Equal(t, "20240101", *q.StartDate)
	assert.Equal(t, "patientName", *q.SortBy)
	assert.Equal(t, "https://example.org/config.json", *q.ConfigURL)
	assert.Nil(t, q.Description)
	assert.Nil(t, q.EndDate)
}

func TestParseFilterStateNonNumericPagesAreAbsent(t *testing.T) {
	for _, raw := range []string{"abc", "2x", "-1", "+3", "1.5", " 2"} {
		q := ParseFilterState(url.Values{"pagenumber": {raw}, "resultsperpage": {raw}})
		assert.Nil(t, q.PageNumber, raw)
		assert.Nil(t, q.ResultsPerPage, raw)
	}
}

func TestParseRawQueryLastValueWins(t *testing.T) {
	q := ParseRawQuery("MRN=111&mrn=222&patientName=A%5EB&modalities=CT%2CMR&bad=%zz")
	require.NotNil(t, q.MRN)
	assert.Equal(t, "222", *q.MRN)
	assert.Equal(t, "A^B", *q.PatientName)
	assert.Equal(t, []string{"CT", "MR"}, q.Modalities)
}

func TestResolvePriority(t *testing.T) {
	defaults := DefaultFilterState(25)
	session := defaults
	session.PatientName = "SESSION"
	session.MRN = "M-1"
	session.PageNumber = 4
	session.Modalities = []string{"MG"}

	q := ParseFilterState(url.Values{"patientname": {"URL"}, "pagenumber": {"2"}})
	state := Resolve(q, &session, defaults)

	assert.Equal(t, "URL", state.PatientName)
	assert.Equal(t, "M-1", state.MRN)
	assert.Equal(t, 2, state.PageNumber)
	assert.Equal(t, []string{"MG"}, state.Modalities)
	assert.Equal(t, 25, state.ResultsPerPage)
	assert.Equal(t, models.SortNone, state.SortDirection)

	fresh := Resolve(FilterQuery{}, nil, defaults)
	assert.True(t, Equal(fresh, defaults))
}

func TestResolveClampsPaging(t *testing.T) {
	defaults := DefaultFilterState(25)
	zero := 0
	state := Resolve(FilterQuery{PageNumber: &zero, ResultsPerPage: &zero}, nil, defaults)
	assert.Equal(t, 1, state.PageNumber)
	assert.Equal(t, 25, state.ResultsPerPage)
}

func TestApplyChangeResetsPage(t *testing.T) {
	current := DefaultFilterState(25)
	current.PageNumber = 3

	filtered := current
	filtered.PatientName = "DOE"
	assert.Equal(t, 1, ApplyChange(current, filtered).PageNumber)

	moved := current
	moved.PageNumber = 4
	assert.Equal(t, 4, ApplyChange(current, moved).PageNumber)

	rpp := current
	rpp.ResultsPerPage = 50
	assert.Equal(t, 1, ApplyChange(current, rpp).PageNumber)

	dates := current
	dates.StudyDate.StartDate = strPtr("20240101")
	assert.Equal(t, 1, ApplyChange(current, dates).PageNumber)
}

func TestIsFilteringIgnoresConfigURL(t *testing.T) {
	defaults := DefaultFilterState(25)
	state := defaults
	state.ConfigURL = "https://example.org/app-config.json"
	state.Modalities = nil
	assert.False(t, IsFiltering(state, defaults))

	state.Modalities = []string{"CT"}
	assert.True(t, IsFiltering(state, defaults))
}
