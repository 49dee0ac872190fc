package worklist

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

// DefaultSortField is the field ordered on when the user has not picked one.
const DefaultSortField = "studyDate"

var studyDateLayouts = []string{"20060102", "2006.01.02"}

var stringFields = map[string]func(models.Study) string{
	"patientName":      func(s models.Study) string { return s.PatientName },
	"mrn":              func(s models.Study) string { return s.MRN },
	"description":      func(s models.Study) string { return s.Description },
	"accession":        func(s models.Study) string { return s.Accession },
	"modalities":       func(s models.Study) string { return s.Modalities },
	"studyInstanceUid": func(s models.Study) string { return s.StudyInstanceUID },
	"time":             func(s models.Study) string { return s.Time },
	"date":             func(s models.Study) string { return s.Date },
}

var numericFields = map[string]func(models.Study) int{
	"instances": func(s models.Study) int { return s.Instances },
}

// SortableFields lists every sortBy value ApplySort understands.
func SortableFields() []string {
	fields := make([]string, 0, len(stringFields)+len(numericFields)+1)
	for name := range stringFields {
		fields = append(fields, name)
	}
	for name := range numericFields {
		fields = append(fields, name)
	}
	fields = append(fields, DefaultSortField)
	sort.Strings(fields)
	return fields
}

// CanSort reports whether the fetched window is small enough to be ordered locally.
// At or above the limit the data source order is authoritative.
func CanSort(totalCount, limit int) bool {
	return totalCount < limit
}

// SortModifier maps a direction onto the comparator sign. "descending" keeps the natural
// comparison and everything else inverts it, so "ascending" yields largest first.
func SortModifier(direction models.SortDirection) int {
	if direction == models.SortDescending {
		return 1
	}
	return -1
}

// DefaultSort returns the implicit sort reported to clients when sorting applies and the
// state names no field.
func DefaultSort(state models.FilterState, totalCount, limit int) *models.SortHint {
	if state.SortBy != "" || !CanSort(totalCount, limit) {
		return nil
	}
	return &models.SortHint{SortBy: DefaultSortField, SortDirection: models.SortAscending}
}

// ApplySort returns the studies in display order. The input slice is never modified.
func ApplySort(studies []models.Study, state models.FilterState, totalCount, limit int) []models.Study {
	if !CanSort(totalCount, limit) {
		return studies
	}

	ordered := make([]models.Study, len(studies))
	copy(ordered, studies)

	cmp := comparatorFor(state)
	if cmp == nil {
		return ordered
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return cmp(ordered[i], ordered[j]) < 0
	})
	return ordered
}

func comparatorFor(state models.FilterState) func(a, b models.Study) int {
	if state.SortBy == "" {
		return func(a, b models.Study) int {
			return CompareStudyDates(a.Date, b.Date, -1)
		}
	}

	modifier := SortModifier(state.SortDirection)

	if state.SortBy == DefaultSortField {
		return func(a, b models.Study) int {
			return CompareStudyDates(a.Date, b.Date, modifier)
		}
	}

	if field, ok := numericFields[state.SortBy]; ok {
		return func(a, b models.Study) int {
			x, y := field(a), field(b)
			switch {
			case x > y:
				return modifier
			case x < y:
				return -modifier
			default:
				return 0
			}
		}
	}

	if field, ok := stringFields[state.SortBy]; ok {
		collator := collate.New(language.Und)
		return func(a, b models.Study) int {
			x, y := field(a), field(b)
			switch {
			case x == "" && y == "":
				return 0
			case x == "":
				return 1
			case y == "":
				return -1
			}
			return collator.CompareString(x, y) * modifier
		}
	}

	return nil
}

// ParseStudyDate parses a DICOM study date in the strict YYYYMMDD or YYYY.MM.DD forms.
func ParseStudyDate(raw string) (time.Time, bool) {
	for _, layout := range studyDateLayouts {
		if len(raw) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompareStudyDates orders two study date strings. Valid dates compare chronologically
// times modifier; a valid date always precedes an unparsable one and two unparsable dates
// are unordered.
func CompareStudyDates(a, b string, modifier int) int {
	ta, okA := ParseStudyDate(a)
	tb, okB := ParseStudyDate(b)

	switch {
	case okA && okB:
		switch {
		case ta.After(tb):
			return modifier
		case ta.Before(tb):
			return -modifier
		default:
			return 0
		}
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}
