package adapters

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"vigil/internal/listsync"
	"vigil/internal/sanctions"
)

// XML parses XML exports of the shape:
//
//	<sanctionsList>
//	  <entity externalId="EU.1" subjectType="person">
//	    <alias wholeName="..." firstName="..." lastName="..." language="en"/>
//	    <birth date="1952-10-07" place="Leningrad" country="RU"/>
//	    <citizenship country="RU"/>
//	  </entity>
//	</sanctionsList>
type XML struct {
	client *http.Client
}

// NewXML constructs the XML adapter.
func NewXML(client *http.Client) *XML {
	if client == nil {
		client = http.DefaultClient
	}
	return &XML{client: client}
}

type xmlList struct {
	Entities []xmlEntity `xml:"entity"`
}

type xmlEntity struct {
	ExternalID   string           `xml:"externalId,attr"`
	SubjectType  string           `xml:"subjectType,attr"`
	Aliases      []xmlAlias       `xml:"alias"`
	Births       []xmlBirth       `xml:"birth"`
	Citizenships []xmlCitizenship `xml:"citizenship"`
}

type xmlAlias struct {
	WholeName string `xml:"wholeName,attr"`
	FirstName string `xml:"firstName,attr"`
	LastName  string `xml:"lastName,attr"`
	Language  string `xml:"language,attr"`
}

type xmlBirth struct {
	Date    string `xml:"date,attr"`
	Place   string `xml:"place,attr"`
	Country string `xml:"country,attr"`
}

type xmlCitizenship struct {
	Country string `xml:"country,attr"`
}

// Fetch downloads and parses the list.
func (a *XML) Fetch(ctx context.Context, list listsync.ListConfig) ([]*sanctions.SanctionedEntity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, list.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for list %s: %w", list.ID, err)
	}

	body, err := download(a.client, req, list)
	if err != nil {
		return nil, err
	}

	var doc xmlList
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse list %s: %w", list.ID, err)
	}

	entities := make([]*sanctions.SanctionedEntity, 0, len(doc.Entities))
	for _, raw := range doc.Entities {
		entity := &sanctions.SanctionedEntity{
			ExternalID:   raw.ExternalID,
			SourceListID: list.ID,
			SubjectType:  sanctions.ParseSubjectType(raw.SubjectType),
		}
		for _, alias := range raw.Aliases {
			entity.Aliases = append(entity.Aliases, sanctions.NameAlias{
				WholeName: alias.WholeName,
				FirstName: alias.FirstName,
				LastName:  alias.LastName,
				Language:  alias.Language,
			})
		}
		for _, birth := range raw.Births {
			entity.BirthRecords = append(entity.BirthRecords, sanctions.BirthRecord{
				Date:        birth.Date,
				CountryCode: birth.Country,
				Place:       birth.Place,
			})
		}
		for _, citizenship := range raw.Citizenships {
			if citizenship.Country != "" {
				entity.CountryCodes = append(entity.CountryCodes, citizenship.Country)
			}
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
