package dto

import "encoding/json"

// ChangePageRequest captures PUT /worklist/page payload.
type ChangePageRequest struct {
	PageNumber int `json:"page_number" binding:"required"`
}

// ResultsPerPageRequest captures PUT /worklist/results-per-page payload.
type ResultsPerPageRequest struct {
	ResultsPerPage int `json:"results_per_page" binding:"required,min=1"`
}

// CommandRequest captures POST /commands/{name} payload. Args is handed to the command as-is.
type CommandRequest struct {
	Args json.RawMessage `json:"args"`
}

// CommandListResponse lists the commands a client may run.
type CommandListResponse struct {
	Commands []string `json:"commands"`
}

// HealthResponse reports dependency status for readiness probes.
type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
