package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/sanctions"
)

func testEntity(listID, externalID, name string) *sanctions.SanctionedEntity {
	return &sanctions.SanctionedEntity{
		ExternalID:   externalID,
		SourceListID: listID,
		SubjectType:  sanctions.SubjectPerson,
		Aliases:      []sanctions.NameAlias{{WholeName: name}},
		LastSyncedAt: time.Now(),
	}
}

func TestMemoryUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	first := testEntity("EU", "EU.1", "Ivan Petrov")
	require.NoError(t, s.Upsert(ctx, first))
	firstID := first.ID

	second := testEntity("EU", "EU.1", "Ivan PETROV")
	require.NoError(t, s.Upsert(ctx, second))

	assert.Equal(t, firstID, second.ID, "upsert must keep the internal id stable")

	count, err := s.CountByList(ctx, "EU")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	refs, err := s.Aliases(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "Ivan PETROV", refs[0].WholeName)
}

func TestMemoryListsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Upsert(ctx, testEntity("EU", "1", "A")))
	require.NoError(t, s.Upsert(ctx, testEntity("OFAC", "1", "B")))

	euCount, err := s.CountByList(ctx, "EU")
	require.NoError(t, err)
	ofacCount, err := s.CountByList(ctx, "OFAC")
	require.NoError(t, err)
	assert.Equal(t, 1, euCount)
	assert.Equal(t, 1, ofacCount)
}

func TestMemoryDeleteAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Upsert(ctx, testEntity("EU", "1", "A")))
	require.NoError(t, s.Upsert(ctx, testEntity("EU", "2", "B")))
	require.NoError(t, s.Upsert(ctx, testEntity("OFAC", "3", "C")))

	removed, err := s.DeleteAbsent(ctx, "EU", []string{"2"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	euCount, err := s.CountByList(ctx, "EU")
	require.NoError(t, err)
	assert.Equal(t, 1, euCount)

	// Other lists are untouched.
	ofacCount, err := s.CountByList(ctx, "OFAC")
	require.NoError(t, err)
	assert.Equal(t, 1, ofacCount)
}

func TestMemoryFindByIDsReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	e := testEntity("EU", "1", "A")
	require.NoError(t, s.Upsert(ctx, e))

	loaded, err := s.FindByIDs(ctx, []uuid.UUID{e.ID})
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	loaded[0].Aliases[0].WholeName = "mutated"

	again, err := s.FindByIDs(ctx, []uuid.UUID{e.ID})
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Aliases[0].WholeName)
}
