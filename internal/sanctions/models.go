// Package sanctions holds the canonical model for sanctioned entities as
// ingested from regulator watchlists. Entities from different lists are kept
// as separate rows even when they describe the same real-world subject;
// cross-list identity resolution is deliberately not attempted.
package sanctions

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "vigil/pkg/domain-errors"
	platformstrings "vigil/pkg/platform/strings"
)

// SubjectType classifies what kind of subject a list entry describes.
type SubjectType string

const (
	SubjectPerson       SubjectType = "person"
	SubjectOrganization SubjectType = "organization"
	SubjectVessel       SubjectType = "vessel"
	SubjectOther        SubjectType = "other"
)

// ParseSubjectType normalizes a free-form subject type, defaulting to other.
func ParseSubjectType(s string) SubjectType {
	switch SubjectType(strings.ToLower(strings.TrimSpace(s))) {
	case SubjectPerson:
		return SubjectPerson
	case SubjectOrganization:
		return SubjectOrganization
	case SubjectVessel:
		return SubjectVessel
	default:
		return SubjectOther
	}
}

// NameAlias is one reported name variant for an entity.
type NameAlias struct {
	WholeName string
	FirstName string
	LastName  string
	Language  string
}

// BirthRecord is one reported birth date/place. Lists frequently disagree, so
// an entity carries every variant it was reported with. Date is an ISO
// 2006-01-02 string, empty when the source only knew a partial date.
type BirthRecord struct {
	Date        string
	CountryCode string
	Place       string
}

// SanctionedEntity is one person/organization as declared by one watchlist.
// The (SourceListID, ExternalID) pair is the stable upsert key; names are not
// unique and never used as keys.
type SanctionedEntity struct {
	ID           uuid.UUID
	ExternalID   string
	SourceListID string
	SubjectType  SubjectType
	Aliases      []NameAlias
	BirthRecords []BirthRecord
	CountryCodes []string
	LastSyncedAt time.Time
}

// AliasRef is a flat (entity, name) pair used for alias scans during
// screening, so the matching engine can prune before loading full entities.
type AliasRef struct {
	EntityID  uuid.UUID
	WholeName string
}

// Normalize trims alias and country data in place: blank-name aliases are
// dropped (never stored), country codes are uppercased and deduped.
func (e *SanctionedEntity) Normalize() {
	aliases := e.Aliases[:0]
	for _, a := range e.Aliases {
		a.WholeName = strings.TrimSpace(a.WholeName)
		if a.WholeName == "" {
			continue
		}
		a.FirstName = strings.TrimSpace(a.FirstName)
		a.LastName = strings.TrimSpace(a.LastName)
		aliases = append(aliases, a)
	}
	e.Aliases = aliases
	e.CountryCodes = platformstrings.DedupeAndTrimUpper(e.CountryCodes)
	for i := range e.BirthRecords {
		e.BirthRecords[i].Date = strings.TrimSpace(e.BirthRecords[i].Date)
		e.BirthRecords[i].CountryCode = strings.ToUpper(strings.TrimSpace(e.BirthRecords[i].CountryCode))
	}
	if e.SubjectType == "" {
		e.SubjectType = SubjectOther
	}
}

// Validate enforces the persistence invariants. Call after Normalize.
func (e *SanctionedEntity) Validate() error {
	if strings.TrimSpace(e.ExternalID) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "entity requires an external id")
	}
	if strings.TrimSpace(e.SourceListID) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "entity requires a source list id")
	}
	if len(e.Aliases) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "entity requires at least one alias")
	}
	return nil
}
