package worklist

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

// ToQueryString serializes the state into its canonical query string. Only values that
// differ from defaults are written, in lower-case keys, followed by the preserved
// parameters exactly as they were received.
func ToQueryString(state, defaults models.FilterState, preserved url.Values) string {
	values := url.Values{}

	setIfChanged := func(key, current, def string) {
		if current != "" && current != def {
			values.Set(key, current)
		}
	}

	setIfChanged(KeyPatientName, state.PatientName, defaults.PatientName)
	setIfChanged(KeyMRN, state.MRN, defaults.MRN)
	setIfChanged(KeyStartDate, deref(state.StudyDate.StartDate), deref(defaults.StudyDate.StartDate))
	setIfChanged(KeyEndDate, deref(state.StudyDate.EndDate), deref(defaults.StudyDate.EndDate))
	setIfChanged(KeyDescription, state.Description, defaults.Description)
	if len(state.Modalities) > 0 {
		values.Set(KeyModalities, strings.Join(state.Modalities, ","))
	}
	setIfChanged(KeyAccession, state.Accession, defaults.Accession)
	setIfChanged(KeySortBy, state.SortBy, defaults.SortBy)
	setIfChanged(KeySortDirection, string(state.SortDirection), string(defaults.SortDirection))
	if state.PageNumber != defaults.PageNumber {
		values.Set(KeyPageNumber, strconv.Itoa(state.PageNumber))
	}
	if state.ResultsPerPage != defaults.ResultsPerPage {
		values.Set(KeyResultsPerPage, strconv.Itoa(state.ResultsPerPage))
	}
	setIfChanged(KeyDataSources, state.DataSources, defaults.DataSources)
	if state.ConfigURL != "" && !hasKeyFold(preserved, KeyConfigURL) {
		values.Set(KeyConfigURL, state.ConfigURL)
	}

	encoded := values.Encode()
	if tail := preserved.Encode(); tail != "" {
		if encoded == "" {
			return tail
		}
		encoded += "&" + tail
	}
	return encoded
}

// PreservedParams extracts the pass-through parameters named by keys, matching names
// case-insensitively but keeping the spelling the caller used.
func PreservedParams(params url.Values, keys []string) url.Values {
	preserved := url.Values{}
	for name, values := range params {
		for _, key := range keys {
			if strings.EqualFold(name, key) {
				preserved[name] = append([]string(nil), values...)
				break
			}
		}
	}
	return preserved
}

func hasKeyFold(values url.Values, key string) bool {
	for name := range values {
		if strings.EqualFold(name, key) {
			return true
		}
	}
	return false
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
