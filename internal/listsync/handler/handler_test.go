package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/listsync"
	"vigil/internal/sanctions"
	"vigil/internal/sanctions/store"
	"vigil/pkg/testutil"
)

type stubAdapter struct {
	err error
}

func (a *stubAdapter) Fetch(_ context.Context, list listsync.ListConfig) ([]*sanctions.SanctionedEntity, error) {
	if a.err != nil {
		return nil, a.err
	}
	return []*sanctions.SanctionedEntity{{
		ExternalID:   list.ID + ".1",
		SourceListID: list.ID,
		SubjectType:  sanctions.SubjectPerson,
		Aliases:      []sanctions.NameAlias{{WholeName: "Ivan Petrov"}},
	}}, nil
}

func newRouter(t *testing.T, adapter listsync.Adapter, lists ...listsync.ListConfig) chi.Router {
	t.Helper()

	svc := listsync.New(
		listsync.NewRegistry(lists...),
		map[listsync.Format]listsync.Adapter{listsync.FormatXML: adapter, listsync.FormatCSV: adapter},
		store.NewMemory(),
		listsync.NewMemoryLocker(),
	)
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestHandleSyncListSuccess(t *testing.T) {
	router := newRouter(t, &stubAdapter{}, listsync.ListConfig{ID: "EU", Format: listsync.FormatXML, Enabled: true})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sync/EU", nil)
	rec := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.UnmarshalResponse[SyncResultResponse](t, rec)
	assert.Equal(t, "EU", resp.ListID)
	assert.Equal(t, "succeeded", resp.Status)
	assert.Equal(t, 1, resp.Records)
	assert.Empty(t, resp.Error)
}

func TestHandleSyncListUnknown(t *testing.T) {
	router := newRouter(t, &stubAdapter{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sync/NOPE", nil)
	rec := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "not_found")
}

func TestHandleSyncListFetchFailure(t *testing.T) {
	router := newRouter(t, &stubAdapter{err: errors.New("endpoint down")},
		listsync.ListConfig{ID: "EU", Format: listsync.FormatXML, Enabled: true})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sync/EU", nil)
	rec := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	resp := testutil.UnmarshalResponse[SyncResultResponse](t, rec)
	assert.Equal(t, "failed", resp.Status)
	assert.Contains(t, resp.Error, "endpoint down")
}

func TestHandleSyncAll(t *testing.T) {
	router := newRouter(t, &stubAdapter{},
		listsync.ListConfig{ID: "EU", Format: listsync.FormatXML, Enabled: true},
		listsync.ListConfig{ID: "OFAC", Format: listsync.FormatCSV, Enabled: false},
	)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sync", nil)
	rec := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.UnmarshalResponse[SyncReportResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"EU"}, resp.Succeeded)
	assert.Equal(t, []string{"OFAC"}, resp.Skipped)
	assert.Empty(t, resp.Failed)
	assert.Equal(t, 1, resp.TotalRecords)
	require.Len(t, resp.Results, 2)
}

func TestHandleLists(t *testing.T) {
	router := newRouter(t, &stubAdapter{},
		listsync.ListConfig{ID: "EU", Name: "EU Consolidated", Format: listsync.FormatXML, Enabled: true},
		listsync.ListConfig{ID: "OFAC", Name: "OFAC SDN", Format: listsync.FormatCSV, Enabled: false},
	)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/sync/lists", nil)
	rec := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.UnmarshalResponse[ListsResponse](t, rec)
	assert.Equal(t, 1, resp.TotalActive)
	require.Len(t, resp.ActiveLists, 1)
	assert.Equal(t, "EU", resp.ActiveLists[0].ID)
}
