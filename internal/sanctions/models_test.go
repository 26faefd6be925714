package sanctions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vigil/pkg/domain-errors"
)

func TestNormalizeDropsBlankAliases(t *testing.T) {
	e := &SanctionedEntity{
		ExternalID:   "EU.123",
		SourceListID: "EU",
		Aliases: []NameAlias{
			{WholeName: "  "},
			{WholeName: " Ivan PETROV ", FirstName: " Ivan "},
			{WholeName: ""},
		},
		CountryCodes: []string{" ru ", "RU", "de"},
	}
	e.Normalize()

	require.Len(t, e.Aliases, 1)
	assert.Equal(t, "Ivan PETROV", e.Aliases[0].WholeName)
	assert.Equal(t, "Ivan", e.Aliases[0].FirstName)
	assert.Equal(t, []string{"RU", "DE"}, e.CountryCodes)
	assert.Equal(t, SubjectOther, e.SubjectType)
}

func TestValidateRequiresAlias(t *testing.T) {
	e := &SanctionedEntity{
		ExternalID:   "EU.123",
		SourceListID: "EU",
		Aliases:      []NameAlias{{WholeName: "   "}},
	}
	e.Normalize()

	err := e.Validate()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestValidateRequiresKeys(t *testing.T) {
	e := &SanctionedEntity{Aliases: []NameAlias{{WholeName: "X"}}}
	require.Error(t, e.Validate())

	e.ExternalID = "1"
	require.Error(t, e.Validate())

	e.SourceListID = "EU"
	require.NoError(t, e.Validate())
}

func TestParseSubjectType(t *testing.T) {
	assert.Equal(t, SubjectPerson, ParseSubjectType(" Person "))
	assert.Equal(t, SubjectVessel, ParseSubjectType("vessel"))
	assert.Equal(t, SubjectOther, ParseSubjectType("enterprise"))
}
