package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDataFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  []DataField
		missing []string
	}{
		{
			name: "all required mapped",
			fields: []DataField{
				{FieldName: FieldName, CSVColumn: "Full Name", Required: true, Type: FieldTypeText},
				{FieldName: FieldEmail, CSVColumn: "E-mail", Required: true, Type: FieldTypeEmail},
				{FieldName: FieldPhone, Type: FieldTypePhone},
			},
		},
		{
			name:    "defaults leave name and email unmapped",
			fields:  DefaultCampaignSettings().DataFields,
			missing: []string{FieldName, FieldEmail},
		},
		{
			name: "blank column counts as unmapped",
			fields: []DataField{
				{FieldName: FieldName, CSVColumn: "name", Required: true, Type: FieldTypeText},
				{FieldName: FieldEmail, CSVColumn: "   ", Required: true, Type: FieldTypeEmail},
			},
			missing: []string{FieldEmail},
		},
		{
			name: "canonical required field absent from the list",
			fields: []DataField{
				{FieldName: FieldName, CSVColumn: "name", Required: true, Type: FieldTypeText},
			},
			missing: []string{FieldEmail},
		},
		{
			name:    "empty list",
			fields:  nil,
			missing: []string{FieldName, FieldEmail},
		},
		{
			name: "required custom field",
			fields: []DataField{
				{FieldName: FieldName, CSVColumn: "name", Required: true, Type: FieldTypeText},
				{FieldName: FieldEmail, CSVColumn: "email", Required: true, Type: FieldTypeEmail},
				{FieldName: "Budget", Required: true, Type: FieldTypeNumber},
			},
			missing: []string{"Budget"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataFields(tt.fields)
			if len(tt.missing) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRequiredFieldUnmapped))

			var mappingErr *MappingError
			require.True(t, errors.As(err, &mappingErr))
			assert.Equal(t, tt.missing, mappingErr.Fields)
			assert.Len(t, mappingErr.FieldErrors(), len(tt.missing))
		})
	}
}

func TestValidateColumns(t *testing.T) {
	headers := []string{"Full Name", "Email", "City"}

	ok := []DataField{
		{FieldName: FieldName, CSVColumn: "Full Name"},
		{FieldName: FieldEmail, CSVColumn: "Email"},
		{FieldName: FieldPhone},
	}
	assert.NoError(t, ValidateColumns(ok, headers))

	bad := []DataField{
		{FieldName: FieldName, CSVColumn: "Full Name"},
		{FieldName: FieldLocation, CSVColumn: "Town"},
	}
	err := ValidateColumns(bad, headers)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownColumn))

	var mappingErr *MappingError
	require.True(t, errors.As(err, &mappingErr))
	assert.Equal(t, []string{FieldLocation}, mappingErr.Fields)
	assert.Equal(t, "mapped column does not exist in the csv header", mappingErr.FieldErrors()[FieldLocation])
}

func TestLookupCanonical(t *testing.T) {
	f, ok := LookupCanonical(FieldEmail)
	require.True(t, ok)
	assert.True(t, f.Required)
	assert.Equal(t, FieldTypeEmail, f.Type)

	_, ok = LookupCanonical("email")
	assert.False(t, ok, "lookup is exact")
}
