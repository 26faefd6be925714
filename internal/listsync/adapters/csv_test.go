package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/listsync"
	"vigil/internal/sanctions"
)

const csvFixture = `external_id,subject_type,name,first_name,last_name,language,birth_date,birth_place,birth_country,countries
SDN-1,person,Ivan Petrov,Ivan,Petrov,en,1960-01-01,Moscow,RU,RU;BY
SDN-1,person,I. Petrov,,,en,,,,
SDN-2,organization,Acme Trading LLC,,,,,,,IR
`

func serveFixture(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCSVFetchMergesRowsByExternalID(t *testing.T) {
	srv := serveFixture(t, csvFixture, http.StatusOK)

	adapter := NewCSV(srv.Client())
	entities, err := adapter.Fetch(context.Background(), listsync.ListConfig{ID: "OFAC", Format: listsync.FormatCSV, URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, entities, 2)

	petrov := entities[0]
	assert.Equal(t, "SDN-1", petrov.ExternalID)
	assert.Equal(t, "OFAC", petrov.SourceListID)
	assert.Equal(t, sanctions.SubjectPerson, petrov.SubjectType)
	require.Len(t, petrov.Aliases, 2)
	assert.Equal(t, "Ivan Petrov", petrov.Aliases[0].WholeName)
	assert.Equal(t, "I. Petrov", petrov.Aliases[1].WholeName)
	require.Len(t, petrov.BirthRecords, 1)
	assert.Equal(t, "1960-01-01", petrov.BirthRecords[0].Date)
	assert.Equal(t, "RU", petrov.BirthRecords[0].CountryCode)
	assert.Equal(t, []string{"RU", "BY"}, petrov.CountryCodes)

	acme := entities[1]
	assert.Equal(t, sanctions.SubjectOrganization, acme.SubjectType)
	require.Len(t, acme.Aliases, 1)
	assert.Empty(t, acme.BirthRecords)
}

func TestCSVFetchRejectsMissingExternalIDColumn(t *testing.T) {
	srv := serveFixture(t, "id,name\n1,foo\n", http.StatusOK)

	adapter := NewCSV(srv.Client())
	_, err := adapter.Fetch(context.Background(), listsync.ListConfig{ID: "OFAC", URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "external_id")
}

func TestCSVFetchSurfacesHTTPFailure(t *testing.T) {
	srv := serveFixture(t, "gone", http.StatusServiceUnavailable)

	adapter := NewCSV(srv.Client())
	_, err := adapter.Fetch(context.Background(), listsync.ListConfig{ID: "OFAC", URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestCSVFetchHonorsContextCancellation(t *testing.T) {
	srv := serveFixture(t, csvFixture, http.StatusOK)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := NewCSV(srv.Client())
	_, err := adapter.Fetch(ctx, listsync.ListConfig{ID: "OFAC", URL: srv.URL})
	require.Error(t, err)
}
