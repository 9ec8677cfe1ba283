package leadimport

import (
	"errors"
	"testing"

	"engage-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper_UpsertIsIdempotentPerField(t *testing.T) {
	m := NewMapper()
	initial := len(m.Fields())

	m.Upsert(domain.FieldEmail, "email")
	m.Upsert(domain.FieldEmail, "work_email")

	fields := m.Fields()
	assert.Len(t, fields, initial)

	count := 0
	for _, f := range fields {
		if f.FieldName == domain.FieldEmail {
			count++
			assert.Equal(t, "work_email", f.CSVColumn)
			assert.True(t, f.Required)
		}
	}
	assert.Equal(t, 1, count)
}

func TestMapper_UpsertKeepsOrderAndAppendsCustom(t *testing.T) {
	m := NewMapper()
	m.Upsert("Budget", "budget_usd")
	m.Upsert(domain.FieldName, "full_name")

	fields := m.Fields()
	require.Len(t, fields, len(domain.CanonicalFields)+1)
	assert.Equal(t, domain.FieldName, fields[0].FieldName)
	assert.Equal(t, "full_name", fields[0].CSVColumn)

	custom := fields[len(fields)-1]
	assert.Equal(t, "Budget", custom.FieldName)
	assert.False(t, custom.Required)
	assert.Equal(t, domain.FieldTypeText, custom.Type)
}

func TestMapper_SameColumnForTwoFields(t *testing.T) {
	m := NewMapper()
	m.Upsert(domain.FieldName, "contact")
	m.Upsert(domain.FieldEmail, "contact")
	m.Upsert(domain.FieldCompany, "contact")

	assert.NoError(t, m.Validate([]string{"contact"}))
}

func TestMapper_Validate(t *testing.T) {
	m := NewMapper()
	m.Upsert(domain.FieldName, "name")

	err := m.Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRequiredFieldUnmapped))

	m.Upsert(domain.FieldEmail, "mail")
	assert.NoError(t, m.Validate(nil))

	err = m.Validate([]string{"name", "email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownColumn))

	m.Upsert(domain.FieldEmail, "  ")
	err = m.Validate([]string{"name"})
	assert.True(t, errors.Is(err, domain.ErrRequiredFieldUnmapped))
}

func TestNewMapperFrom_RestoresCanonicalFlags(t *testing.T) {
	m := NewMapperFrom([]domain.DataField{
		{FieldName: domain.FieldName, CSVColumn: "n", Required: false, Type: domain.FieldTypeNumber},
		{FieldName: " Score ", CSVColumn: "score", Required: true, Type: domain.FieldTypeNumber},
	})

	fields := m.Fields()
	require.Len(t, fields, len(domain.CanonicalFields)+1)
	assert.Equal(t, domain.FieldName, fields[0].FieldName)
	assert.Equal(t, "n", fields[0].CSVColumn)
	assert.True(t, fields[0].Required)
	assert.Equal(t, domain.FieldTypeText, fields[0].Type)

	custom := fields[len(fields)-1]
	assert.Equal(t, "Score", custom.FieldName)
	assert.True(t, custom.Required)
	assert.Equal(t, domain.FieldTypeNumber, custom.Type)
}

func TestNewMapperFrom_SeedsCanonicalFields(t *testing.T) {
	m := NewMapperFrom([]domain.DataField{
		{FieldName: domain.FieldName, CSVColumn: "Full Name"},
		{FieldName: domain.FieldEmail, CSVColumn: "E-mail"},
	})

	names := make([]string, 0, len(m.Fields()))
	for _, f := range m.Fields() {
		names = append(names, f.FieldName)
	}
	for _, c := range domain.CanonicalFields {
		assert.Contains(t, names, c.Name)
	}
	assert.Equal(t, "", m.Column(domain.FieldPhone))
	assert.NoError(t, m.Validate([]string{"Full Name", "E-mail"}))

	// mapeamento vazio ainda exige Name e Email
	err := NewMapperFrom(nil).Validate(nil)
	assert.True(t, errors.Is(err, domain.ErrRequiredFieldUnmapped))
}

func TestSuggestMapping(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    map[string]string
	}{
		{
			name:    "snake case export",
			headers: []string{"full_name", "email", "phone"},
			want:    map[string]string{domain.FieldName: "full_name", domain.FieldEmail: "email", domain.FieldPhone: "phone"},
		},
		{
			name:    "spreadsheet headers",
			headers: []string{"Contact Name", "E-Mail", "Mobile", "Organization", "City"},
			want: map[string]string{
				domain.FieldName:     "Contact Name",
				domain.FieldEmail:    "E-Mail",
				domain.FieldPhone:    "Mobile",
				domain.FieldCompany:  "Organization",
				domain.FieldLocation: "City",
			},
		},
		{
			name:    "first match wins",
			headers: []string{"Email Address", "email"},
			want:    map[string]string{domain.FieldEmail: "Email Address"},
		},
		{
			name:    "nothing recognized",
			headers: []string{"col1", "col2"},
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := SuggestMapping(tt.headers)
			for _, c := range domain.CanonicalFields {
				assert.Equal(t, tt.want[c.Name], m.Column(c.Name), c.Name)
			}
		})
	}
}
