package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"vigil/internal/sanctions"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// Memory is an in-memory entity store used in tests and for running without
// PostgreSQL. Entities are keyed by (source list, external id) for upserts and
// by internal id for reads.
type Memory struct {
	mu    sync.RWMutex
	byKey map[string]*sanctions.SanctionedEntity
	byID  map[uuid.UUID]*sanctions.SanctionedEntity
}

// NewMemory creates an empty in-memory entity store.
func NewMemory() *Memory {
	return &Memory{
		byKey: make(map[string]*sanctions.SanctionedEntity),
		byID:  make(map[uuid.UUID]*sanctions.SanctionedEntity),
	}
}

func upsertKey(sourceListID, externalID string) string {
	return sourceListID + "\x00" + externalID
}

// Upsert inserts or replaces an entity keyed by (SourceListID, ExternalID).
// A new internal id is assigned on insert; updates keep the existing one.
func (m *Memory) Upsert(_ context.Context, e *sanctions.SanctionedEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := upsertKey(e.SourceListID, e.ExternalID)
	if existing, ok := m.byKey[key]; ok {
		e.ID = existing.ID
	} else if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	stored := cloneEntity(e)
	m.byKey[key] = stored
	m.byID[stored.ID] = stored
	return nil
}

// DeleteAbsent removes every entity of the given list whose external id is not
// in keep, returning the number removed. An empty keep set removes the whole
// list.
func (m *Memory) DeleteAbsent(_ context.Context, sourceListID string, keepExternalIDs []string) (int, error) {
	keep := make(map[string]struct{}, len(keepExternalIDs))
	for _, id := range keepExternalIDs {
		keep[id] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.byKey {
		if e.SourceListID != sourceListID {
			continue
		}
		if _, ok := keep[e.ExternalID]; ok {
			continue
		}
		delete(m.byKey, key)
		delete(m.byID, e.ID)
		removed++
	}
	return removed, nil
}

// Aliases returns every persisted alias with its owning entity id, in a
// deterministic order.
func (m *Memory) Aliases(_ context.Context) ([]sanctions.AliasRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	refs := make([]sanctions.AliasRef, 0, len(m.byID))
	for _, e := range m.byID {
		for _, a := range e.Aliases {
			refs = append(refs, sanctions.AliasRef{EntityID: e.ID, WholeName: a.WholeName})
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].EntityID != refs[j].EntityID {
			return refs[i].EntityID.String() < refs[j].EntityID.String()
		}
		return refs[i].WholeName < refs[j].WholeName
	})
	return refs, nil
}

// FindByIDs loads full entities for the given internal ids. Missing ids are
// silently skipped; screening treats them as entities deleted mid-scan.
func (m *Memory) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*sanctions.SanctionedEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entities := make([]*sanctions.SanctionedEntity, 0, len(ids))
	for _, id := range ids {
		if e, ok := m.byID[id]; ok {
			entities = append(entities, cloneEntity(e))
		}
	}
	return entities, nil
}

// CountByList returns the number of entities persisted for a list.
func (m *Memory) CountByList(_ context.Context, sourceListID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, e := range m.byID {
		if e.SourceListID == sourceListID {
			count++
		}
	}
	return count, nil
}

func cloneEntity(e *sanctions.SanctionedEntity) *sanctions.SanctionedEntity {
	clone := *e
	clone.Aliases = append([]sanctions.NameAlias(nil), e.Aliases...)
	clone.BirthRecords = append([]sanctions.BirthRecord(nil), e.BirthRecords...)
	clone.CountryCodes = append([]string(nil), e.CountryCodes...)
	return &clone
}
