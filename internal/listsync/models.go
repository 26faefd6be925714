// Package listsync orchestrates ingestion of regulator watchlists into the
// canonical entity store. Each configured list has a format adapter; syncs of
// different lists are independent, so one regulator's outage never blocks the
// others.
package listsync

import (
	"sort"
	"strings"
)

// Format names the wire format a list is published in.
type Format string

const (
	FormatXML Format = "xml"
	FormatCSV Format = "csv"
)

// ListConfig describes one configured watchlist source.
type ListConfig struct {
	ID      string
	Name    string
	Format  Format
	URL     string
	Enabled bool
}

// Registry holds the configured lists, keyed by id.
type Registry struct {
	lists map[string]ListConfig
	order []string
}

// NewRegistry builds a registry from explicit list configs.
func NewRegistry(lists ...ListConfig) *Registry {
	r := &Registry{lists: make(map[string]ListConfig, len(lists))}
	for _, l := range lists {
		if _, ok := r.lists[l.ID]; !ok {
			r.order = append(r.order, l.ID)
		}
		r.lists[l.ID] = l
	}
	return r
}

// DefaultRegistry returns the built-in list set. IDs named in disabled come up
// with Enabled false so operators can exclude a source without code changes.
func DefaultRegistry(disabled ...string) *Registry {
	off := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		off[strings.TrimSpace(id)] = true
	}
	lists := []ListConfig{
		{ID: "EU", Name: "EU Consolidated Financial Sanctions List", Format: FormatXML, URL: "https://webgate.ec.europa.eu/fsd/fsf/public/files/xmlFullSanctionsList_1_1/content"},
		{ID: "OFAC", Name: "OFAC Specially Designated Nationals", Format: FormatCSV, URL: "https://www.treasury.gov/ofac/downloads/sdn.csv"},
		{ID: "CZ", Name: "Czech National Sanctions List", Format: FormatXML, URL: "https://sankce.fau.gov.cz/export/sanctions.xml"},
		{ID: "AMLA", Name: "AMLA Watchlist", Format: FormatCSV, URL: "https://data.amla.europa.eu/watchlist/export.csv"},
	}
	for i := range lists {
		lists[i].Enabled = !off[lists[i].ID]
	}
	return NewRegistry(lists...)
}

// Get returns a list config by id.
func (r *Registry) Get(id string) (ListConfig, bool) {
	l, ok := r.lists[id]
	return l, ok
}

// All returns every configured list in registration order.
func (r *Registry) All() []ListConfig {
	out := make([]ListConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.lists[id])
	}
	return out
}

// Active returns the enabled lists in registration order.
func (r *Registry) Active() []ListConfig {
	var out []ListConfig
	for _, l := range r.All() {
		if l.Enabled {
			out = append(out, l)
		}
	}
	return out
}

// Status is the outcome of syncing one list.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Result is the per-list outcome of a sync run.
type Result struct {
	ListID  string
	Status  Status
	Records int
	Err     error
}

// Report aggregates the per-list results of a full sync run. Succeeded,
// Failed, and Skipped hold the list ids per outcome so callers never have to
// re-derive them from Results.
type Report struct {
	Results      []Result
	Succeeded    []string
	Failed       []string
	Skipped      []string
	TotalRecords int
}

// BuildReport tallies results into a report, ordered by list id.
func BuildReport(results []Result) Report {
	report := Report{
		Results:   results,
		Succeeded: []string{},
		Failed:    []string{},
		Skipped:   []string{},
	}
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].ListID < report.Results[j].ListID
	})
	for _, r := range report.Results {
		switch r.Status {
		case StatusSucceeded:
			report.Succeeded = append(report.Succeeded, r.ListID)
			report.TotalRecords += r.Records
		case StatusFailed:
			report.Failed = append(report.Failed, r.ListID)
		case StatusSkipped:
			report.Skipped = append(report.Skipped, r.ListID)
		}
	}
	return report
}

// Success reports whether no list failed.
func (r Report) Success() bool {
	return len(r.Failed) == 0
}
