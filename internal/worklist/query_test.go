package worklist

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

func TestToQueryStringOmitsDefaults(t *testing.T) {
	defaults := DefaultFilterState(25)
	assert.Equal(t, "", ToQueryString(defaults, defaults, nil))

	state := defaults
	state.PatientName = "DOE"
	state.Modalities = []string{"CT", "MR"}
	state.StudyDate = models.StudyDateRange{StartDate: strPtr("20240101"), EndDate: strPtr("")}
	state.PageNumber = 2
	state.SortDirection = models.SortNone

	assert.Equal(t, "modalities=CT%2CMR&pagenumber=2&patientname=DOE&startdate=20240101",
		ToQueryString(state, defaults, url.Values{}))
}

func TestToQueryStringAppendsPreserved(t *testing.T) {
	defaults := DefaultFilterState(25)
	state := defaults
	state.ResultsPerPage = 50
	state.ConfigURL = "https://from-session/config.json"

	preserved := url.Values{"configUrl": {"https://cfg/app.json"}, "token": {"abc"}}
	assert.Equal(t, "resultsperpage=50&configUrl=https%3A%2F%2Fcfg%2Fapp.json&token=abc",
		ToQueryString(state, defaults, preserved))

	assert.Equal(t, "configurl=https%3A%2F%2Ffrom-session%2Fconfig.json&resultsperpage=50",
		ToQueryString(state, defaults, nil))
}

func TestToQueryStringRoundTripsThroughParse(t *testing.T) {
	defaults := DefaultFilterState(25)
	state := defaults
	state.MRN = "123"
	state.SortBy = "patientName"
	state.SortDirection = models.SortDescending
	state.StudyDate.EndDate = strPtr("20241231")

	parsed := Resolve(ParseRawQuery(ToQueryString(state, defaults, nil)), nil, defaults)
	assert.True(t, Equal(state, parsed))
}

func TestPreservedParams(t *testing.T) {
	params := url.Values{"ConfigURL": {"x"}, "token": {"t"}, "mrn": {"1"}}
	got := PreservedParams(params, []string{"configUrl", "token"})
	assert.Equal(t, url.Values{"ConfigURL": {"x"}, "token": {"t"}}, got)
}
