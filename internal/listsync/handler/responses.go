package handler

import (
	"vigil/internal/listsync"
)

// SyncResultResponse is the HTTP response for POST /sync/{listID}.
type SyncResultResponse struct {
	ListID  string `json:"list_id"`
	Status  string `json:"status"`
	Records int    `json:"records,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FromResult converts a per-list outcome to an HTTP response.
func FromResult(result listsync.Result) *SyncResultResponse {
	resp := &SyncResultResponse{
		ListID:  result.ListID,
		Status:  string(result.Status),
		Records: result.Records,
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	return resp
}

// SyncReportResponse is the HTTP response for POST /sync. The outcome fields
// carry list ids; counts are their lengths.
type SyncReportResponse struct {
	Success      bool                 `json:"success"`
	Succeeded    []string             `json:"succeeded"`
	Failed       []string             `json:"failed"`
	Skipped      []string             `json:"skipped"`
	TotalRecords int                  `json:"total_records"`
	Results      []SyncResultResponse `json:"results"`
}

// FromReport converts a full-run report to an HTTP response.
func FromReport(report listsync.Report) *SyncReportResponse {
	resp := &SyncReportResponse{
		Success:      report.Success(),
		Succeeded:    report.Succeeded,
		Failed:       report.Failed,
		Skipped:      report.Skipped,
		TotalRecords: report.TotalRecords,
		Results:      make([]SyncResultResponse, 0, len(report.Results)),
	}
	for _, result := range report.Results {
		resp.Results = append(resp.Results, *FromResult(result))
	}
	return resp
}

// ListResponse describes one configured list.
type ListResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Format  string `json:"format"`
	Enabled bool   `json:"enabled"`
}

// ListsResponse is the HTTP response for GET /sync/lists.
type ListsResponse struct {
	ActiveLists []ListResponse `json:"active_lists"`
	TotalActive int            `json:"total_active"`
}

// FromLists converts list configs to an HTTP response, active lists only.
func FromLists(lists []listsync.ListConfig) *ListsResponse {
	resp := &ListsResponse{ActiveLists: make([]ListResponse, 0, len(lists))}
	for _, l := range lists {
		if !l.Enabled {
			continue
		}
		resp.ActiveLists = append(resp.ActiveLists, ListResponse{
			ID:      l.ID,
			Name:    l.Name,
			Format:  string(l.Format),
			Enabled: l.Enabled,
		})
	}
	resp.TotalActive = len(resp.ActiveLists)
	return resp
}
