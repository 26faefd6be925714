package screening

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/sanctions"
	"vigil/internal/sanctions/store"
	dErrors "vigil/pkg/domain-errors"
)

func seedEntity(t *testing.T, s *store.Memory, listID, externalID string, aliases []string, birth *sanctions.BirthRecord, countries ...string) *sanctions.SanctionedEntity {
	t.Helper()
	e := &sanctions.SanctionedEntity{
		ExternalID:   externalID,
		SourceListID: listID,
		SubjectType:  sanctions.SubjectPerson,
		CountryCodes: countries,
		LastSyncedAt: time.Now(),
	}
	for _, a := range aliases {
		e.Aliases = append(e.Aliases, sanctions.NameAlias{WholeName: a})
	}
	if birth != nil {
		e.BirthRecords = []sanctions.BirthRecord{*birth}
	}
	e.Normalize()
	require.NoError(t, e.Validate())
	require.NoError(t, s.Upsert(context.Background(), e))
	return e
}

func TestScreenFullProfileHit(t *testing.T) {
	ctx := context.Background()
	entities := store.NewMemory()
	seedEntity(t, entities, "EU", "EU.1",
		[]string{"Vladimir Vladimirovich PUTIN", "Владимир ПУТИН"},
		&sanctions.BirthRecord{Date: "1952-10-07", CountryCode: "RU"},
		"RU",
	)

	svc := New(entities, DefaultConfig())
	matches, err := svc.Screen(ctx, Query{
		Name:        "Vladimir Putin",
		DateOfBirth: "1952-10-07",
		CountryCode: "RU",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, ClassificationHit, m.Classification)
	assert.Equal(t, "EU", m.SourceListID)
	assert.Equal(t, 100, m.NameScore)
	assert.Equal(t, 100, m.DateScore)
	assert.Equal(t, 100, m.CountryScore)
	assert.Equal(t, 100, m.Composite)
}

func TestScreenUnrelatedNameIsClear(t *testing.T) {
	ctx := context.Background()
	entities := store.NewMemory()
	seedEntity(t, entities, "EU", "EU.1",
		[]string{"Vladimir Vladimirovich PUTIN"},
		&sanctions.BirthRecord{Date: "1952-10-07", CountryCode: "RU"},
		"RU",
	)

	svc := New(entities, DefaultConfig())
	matches, err := svc.Screen(ctx, Query{Name: "John Smith"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestScreenNameOnlyRedistributesWeights(t *testing.T) {
	ctx := context.Background()
	entities := store.NewMemory()
	seedEntity(t, entities, "OFAC", "SDN-1", []string{"John Smith"}, nil)

	svc := New(entities, DefaultConfig())

	// Exact name, no secondary fields: name carries the full weight.
	matches, err := svc.Screen(ctx, Query{Name: "john smith"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 100, matches[0].Composite)
	assert.Equal(t, ClassificationHit, matches[0].Classification)
}

func TestScreenNearMissLandsInReview(t *testing.T) {
	ctx := context.Background()
	entities := store.NewMemory()
	seedEntity(t, entities, "OFAC", "SDN-1", []string{"John"}, nil)

	svc := New(entities, DefaultConfig())
	matches, err := svc.Screen(ctx, Query{Name: "Jon"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 75, matches[0].NameScore)
	assert.Equal(t, 75, matches[0].Composite)
	assert.Equal(t, ClassificationReview, matches[0].Classification)
}

func TestScreenMismatchedSecondaryFieldsDragScoreDown(t *testing.T) {
	ctx := context.Background()
	entities := store.NewMemory()
	seedEntity(t, entities, "EU", "EU.1",
		[]string{"Ivan Petrov"},
		&sanctions.BirthRecord{Date: "1960-01-01", CountryCode: "RU"},
		"RU",
	)

	svc := New(entities, DefaultConfig())
	matches, err := svc.Screen(ctx, Query{
		Name:        "Ivan Petrov",
		DateOfBirth: "1985-05-05",
		CountryCode: "DE",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// 0.7*100 + 0.15*0 + 0.15*0 = 70
	assert.Equal(t, 70, matches[0].Composite)
	assert.Equal(t, ClassificationReview, matches[0].Classification)
}

func TestScreenWeakCompositeReturnedAsClear(t *testing.T) {
	ctx := context.Background()
	entities := store.NewMemory()
	seedEntity(t, entities, "EU", "EU.1",
		[]string{"Petrov"},
		&sanctions.BirthRecord{Date: "1960-01-01", CountryCode: "RU"},
		"RU",
	)

	svc := New(entities, DefaultConfig())
	matches, err := svc.Screen(ctx, Query{
		Name:        "Petro",
		DateOfBirth: "1985-05-05",
		CountryCode: "DE",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// Name survives the floor but the composite lands under the review
	// threshold; the candidate still comes back, classified CLEAR.
	m := matches[0]
	assert.Equal(t, 83, m.NameScore)
	assert.Equal(t, 58, m.Composite)
	assert.Equal(t, ClassificationClear, m.Classification)
}

func TestScreenBirthCountryCountsAsCountrySignal(t *testing.T) {
	ctx := context.Background()
	entities := store.NewMemory()
	seedEntity(t, entities, "EU", "EU.1",
		[]string{"Ivan Petrov"},
		&sanctions.BirthRecord{Date: "", CountryCode: "RU"},
	)

	svc := New(entities, DefaultConfig())
	matches, err := svc.Screen(ctx, Query{Name: "Ivan Petrov", CountryCode: "ru"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 100, matches[0].CountryScore)
}

func TestScreenBestAliasWins(t *testing.T) {
	ctx := context.Background()
	entities := store.NewMemory()
	seedEntity(t, entities, "EU", "EU.1", []string{"I. Petrov", "Ivan Petrov"}, nil)

	svc := New(entities, DefaultConfig())
	matches, err := svc.Screen(ctx, Query{Name: "Ivan Petrov"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Ivan Petrov", matches[0].MatchedAlias)
	assert.Equal(t, 100, matches[0].NameScore)
}

func TestScreenOrderingIsDeterministic(t *testing.T) {
	ctx := context.Background()
	entities := store.NewMemory()
	a := seedEntity(t, entities, "EU", "EU.1", []string{"John Smith"}, nil)
	b := seedEntity(t, entities, "OFAC", "SDN-1", []string{"John Smith"}, nil)

	svc := New(entities, DefaultConfig())
	matches, err := svc.Screen(ctx, Query{Name: "John Smith"})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Equal composites break ties on entity id.
	expected := []uuid.UUID{a.ID, b.ID}
	if expected[1].String() < expected[0].String() {
		expected[0], expected[1] = expected[1], expected[0]
	}
	assert.Equal(t, expected[0].String(), matches[0].EntityID)
	assert.Equal(t, expected[1].String(), matches[1].EntityID)
}

func TestScreenBlankNameRejected(t *testing.T) {
	svc := New(store.NewMemory(), DefaultConfig())

	_, err := svc.Screen(context.Background(), Query{Name: "   "})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestScreenEmptyStoreReturnsEmptySlice(t *testing.T) {
	svc := New(store.NewMemory(), DefaultConfig())

	matches, err := svc.Screen(context.Background(), Query{Name: "Anyone"})
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

type failingReader struct{}

func (failingReader) Aliases(context.Context) ([]sanctions.AliasRef, error) {
	return nil, errors.New("boom")
}

func (failingReader) FindByIDs(context.Context, []uuid.UUID) ([]*sanctions.SanctionedEntity, error) {
	return nil, errors.New("boom")
}

func TestScreenStoreFailureIsInternal(t *testing.T) {
	svc := New(failingReader{}, DefaultConfig())

	_, err := svc.Screen(context.Background(), Query{Name: "Anyone"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
