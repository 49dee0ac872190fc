package models

import "time"

// SortDirection is the user-selected ordering label.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
	SortNone       SortDirection = "none"
)

// StudyDateRange bounds the study date filter. Nil bounds are open.
type StudyDateRange struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// FilterState is the complete filter/sort/page state of one worklist session.
type FilterState struct {
	PatientName    string         `json:"patient_name"`
	MRN            string         `json:"mrn"`
	StudyDate      StudyDateRange `json:"study_date"`
	Description    string         `json:"description"`
	Modalities     []string       `json:"modalities"`
	Accession      string         `json:"accession"`
	SortBy         string         `json:"sort_by"`
	SortDirection  SortDirection  `json:"sort_direction"`
	PageNumber     int            `json:"page_number"`
	ResultsPerPage int            `json:"results_per_page"`
	DataSources    string         `json:"datasources"`
	ConfigURL      string         `json:"config_url,omitempty"`
}

// RowState tracks a study row through expansion.
type RowState string

const (
	RowCollapsed RowState = "collapsed"
	RowExpanding RowState = "expanding"
	RowExpanded  RowState = "expanded"
)

// RowExpansion reports the state of one row after a toggle.
type RowExpansion struct {
	Index            int         `json:"index"`
	StudyInstanceUID string      `json:"study_instance_uid"`
	State            RowState    `json:"state"`
	Series           []SeriesRow `json:"series,omitempty"`
}

// ModeLaunch describes one viewer mode button rendered for a study.
type ModeLaunch struct {
	DisplayName string `json:"display_name"`
	RouteName   string `json:"route_name"`
	Valid       bool   `json:"valid"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// WorklistRow is a rendered study row.
type WorklistRow struct {
	Index       int          `json:"index"`
	Study       Study        `json:"study"`
	DisplayDate string       `json:"display_date,omitempty"`
	DisplayTime string       `json:"display_time,omitempty"`
	State       RowState     `json:"state"`
	Series      []SeriesRow  `json:"series,omitempty"`
	Modes       []ModeLaunch `json:"modes,omitempty"`
}

// PageInfo describes where the visible slice sits inside the rolling window.
type PageInfo struct {
	PageNumber     int        `json:"page_number"`
	ResultsPerPage int        `json:"results_per_page"`
	WindowSize     int        `json:"window_size"`
	RollingPage    int        `json:"rolling_page"`
	Offset         int        `json:"offset"`
	TotalCount     int        `json:"total_count"`
	DisplayedTotal int        `json:"displayed_total"`
	Window         DataWindow `json:"window"`
}

// SortHint echoes the implicit sort applied when the user has not chosen one.
type SortHint struct {
	SortBy        string        `json:"sort_by"`
	SortDirection SortDirection `json:"sort_direction"`
}

// WorklistPage is the full payload for one worklist render.
type WorklistPage struct {
	Filters     FilterState   `json:"filters"`
	Rows        []WorklistRow `json:"rows"`
	PageInfo    PageInfo      `json:"page_info"`
	QueryString string        `json:"query_string"`
	IsFiltering bool          `json:"is_filtering"`
	DefaultSort *SortHint     `json:"default_sort,omitempty"`
	Querying    bool          `json:"querying"`
}

// FilterUpdate is returned after any filter mutation.
type FilterUpdate struct {
	Filters     FilterState `json:"filters"`
	QueryString string      `json:"query_string"`
	Changed     bool        `json:"changed"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NotificationLevel classifies a transient notification.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a transient user-facing message.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}
