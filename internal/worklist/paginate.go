package worklist

import "github.com/noah-isme/pacs-worklist-api/internal/models"

// WindowSize is the number of pages served from one fetched window of limit rows.
func WindowSize(resultsPerPage, limit int) int {
	if resultsPerPage <= 0 {
		return 1
	}
	size := limit / resultsPerPage
	if size < 1 {
		return 1
	}
	return size
}

// RollingPage is the zero-based position of the page inside its window.
func RollingPage(pageNumber, resultsPerPage, limit int) int {
	if pageNumber < 1 {
		pageNumber = 1
	}
	return (pageNumber - 1) % WindowSize(resultsPerPage, limit)
}

// DataWindowFor returns which block of rows the data source has to return for the page.
func DataWindowFor(state models.FilterState, limit int) models.DataWindow {
	size := WindowSize(state.ResultsPerPage, limit)
	page := state.PageNumber
	if page < 1 {
		page = 1
	}
	index := (page - 1) / size
	return models.DataWindow{
		Offset: index * size * state.ResultsPerPage,
		Limit:  limit,
	}
}

// DisplayedTotal caps the advertised study count at the limit once the page reaches past
// the first limit-1 rows, so the pager keeps offering a next page.
func DisplayedTotal(state models.FilterState, totalCount, limit int) int {
	if state.PageNumber*state.ResultsPerPage > limit-1 {
		return limit
	}
	return totalCount
}

// Paginate slices the ordered window down to the visible page.
func Paginate(ordered []models.Study, state models.FilterState, totalCount, limit int) ([]models.Study, models.PageInfo) {
	size := WindowSize(state.ResultsPerPage, limit)
	rolling := RollingPage(state.PageNumber, state.ResultsPerPage, limit)
	offset := state.ResultsPerPage * rolling

	start := clamp(offset, 0, len(ordered))
	end := clamp(offset+state.ResultsPerPage, start, len(ordered))

	info := models.PageInfo{
		PageNumber:     state.PageNumber,
		ResultsPerPage: state.ResultsPerPage,
		WindowSize:     size,
		RollingPage:    rolling,
		Offset:         offset,
		TotalCount:     totalCount,
		DisplayedTotal: DisplayedTotal(state, totalCount, limit),
		Window:         DataWindowFor(state, limit),
	}
	return ordered[start:end], info
}

// CanChangePage reports whether moving from the current page to newPage is allowed.
// Moving back or staying is always allowed; moving forward is refused once the rows of
// the current window are exhausted.
func CanChangePage(state models.FilterState, newPage, totalCount, limit int) bool {
	if newPage < 1 {
		return false
	}
	if newPage <= state.PageNumber {
		return true
	}
	rolling := state.PageNumber % WindowSize(state.ResultsPerPage, limit)
	if rolling < 1 {
		rolling = 1
	}
	return rolling*state.ResultsPerPage < totalCount
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
