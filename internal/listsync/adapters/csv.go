package adapters

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"vigil/internal/listsync"
	"vigil/internal/sanctions"
)

// CSV parses header-mapped CSV exports. One entity may span several rows:
// rows sharing an external id are merged, each contributing an alias and
// optionally a birth record. Recognized columns:
//
//	external_id, subject_type, name, first_name, last_name, language,
//	birth_date, birth_place, birth_country, countries
//
// countries holds semicolon-separated ISO codes.
type CSV struct {
	client *http.Client
}

// NewCSV constructs the CSV adapter.
func NewCSV(client *http.Client) *CSV {
	if client == nil {
		client = http.DefaultClient
	}
	return &CSV{client: client}
}

// Fetch downloads and parses the list.
func (a *CSV) Fetch(ctx context.Context, list listsync.ListConfig) ([]*sanctions.SanctionedEntity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, list.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for list %s: %w", list.ID, err)
	}

	body, err := download(a.client, req, list)
	if err != nil {
		return nil, err
	}
	return a.parse(list, body)
}

func (a *CSV) parse(list listsync.ListConfig, body []byte) ([]*sanctions.SanctionedEntity, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse list %s: %w", list.ID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse list %s: empty file", list.ID)
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["external_id"]; !ok {
		return nil, fmt.Errorf("parse list %s: missing external_id column", list.ID)
	}

	cell := func(row []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	byExternalID := make(map[string]*sanctions.SanctionedEntity)
	var entities []*sanctions.SanctionedEntity
	for _, row := range records[1:] {
		externalID := cell(row, "external_id")
		if externalID == "" {
			continue
		}

		entity, ok := byExternalID[externalID]
		if !ok {
			entity = &sanctions.SanctionedEntity{
				ExternalID:   externalID,
				SourceListID: list.ID,
				SubjectType:  sanctions.ParseSubjectType(cell(row, "subject_type")),
			}
			byExternalID[externalID] = entity
			entities = append(entities, entity)
		}

		if name := cell(row, "name"); name != "" {
			entity.Aliases = append(entity.Aliases, sanctions.NameAlias{
				WholeName: name,
				FirstName: cell(row, "first_name"),
				LastName:  cell(row, "last_name"),
				Language:  cell(row, "language"),
			})
		}

		date := cell(row, "birth_date")
		place := cell(row, "birth_place")
		birthCountry := cell(row, "birth_country")
		if date != "" || place != "" || birthCountry != "" {
			entity.BirthRecords = append(entity.BirthRecords, sanctions.BirthRecord{
				Date:        date,
				CountryCode: birthCountry,
				Place:       place,
			})
		}

		for _, cc := range strings.Split(cell(row, "countries"), ";") {
			if cc = strings.TrimSpace(cc); cc != "" {
				entity.CountryCodes = append(entity.CountryCodes, cc)
			}
		}
	}
	return entities, nil
}
