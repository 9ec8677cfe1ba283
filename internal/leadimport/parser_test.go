package leadimport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Permissive(t *testing.T) {
	text := " Name , Email ,Phone\r\n" +
		"Ana, ana@x.com ,555\r\n" +
		" , , \n" +
		"Bruno,bruno@x.com\n" +
		"Carla,carla@x.com,777,extra,cells\n" +
		"\n"

	table, err := Parse(text, ModePermissive)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Email", "Phone"}, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, Row{"Name": "Ana", "Email": "ana@x.com", "Phone": "555"}, table.Rows[0])
	assert.Equal(t, Row{"Name": "Bruno", "Email": "bruno@x.com", "Phone": ""}, table.Rows[1])
	assert.Equal(t, Row{"Name": "Carla", "Email": "carla@x.com", "Phone": "777"}, table.Rows[2])
}

func TestParse_PermissiveDoesNotHonorQuotes(t *testing.T) {
	table, err := Parse("name,company\n\"Doe, Jane\",Acme", ModePermissive)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, `"Doe`, table.Rows[0]["name"])
	assert.Equal(t, `Jane"`, table.Rows[0]["company"])
}

func TestParse_Strict(t *testing.T) {
	text := "name,company,email\n" +
		"\"Doe, Jane\",\"Acme \"\"West\"\"\",jane@x.com\n" +
		",,\n" +
		"Bruno,Gym,bruno@x.com\n"

	table, err := Parse(text, ModeStrict)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Doe, Jane", table.Rows[0]["name"])
	assert.Equal(t, `Acme "West"`, table.Rows[0]["company"])
	assert.Equal(t, "Bruno", table.Rows[1]["name"])
}

func TestParse_StrictRejectsRaggedRows(t *testing.T) {
	_, err := Parse("name,email\nAna,ana@x.com,extra\n", ModeStrict)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
	assert.Contains(t, err.Error(), "line 2")
}

func TestParse_Empty(t *testing.T) {
	for _, mode := range []Mode{ModePermissive, ModeStrict} {
		for _, text := range []string{"", " , , ", "\n\nName\nAna"} {
			_, err := Parse(text, mode)
			if mode == ModeStrict && text == "\n\nName\nAna" {
				// encoding/csv skips leading blank lines
				assert.NoError(t, err)
				continue
			}
			assert.ErrorIs(t, err, ErrEmptyCSV, "mode=%s text=%q", mode, text)
		}
	}
}

func TestParse_InvalidMode(t *testing.T) {
	_, err := Parse("a\nb", Mode("loose"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("", ModeStrict)
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)

	m, err = ParseMode(" Permissive ", ModeStrict)
	require.NoError(t, err)
	assert.Equal(t, ModePermissive, m)

	_, err = ParseMode("lenient", ModePermissive)
	assert.ErrorIs(t, err, ErrInvalidMode)
}

// Every retained record has exactly one key per header and blank rows are excluded.
func TestParse_RecordsHaveOneKeyPerHeader(t *testing.T) {
	inputs := []string{
		"a,b,c\n1\n1,2\n1,2,3\n1,2,3,4,5\n,,\n  ,  ,  ",
		"a,b,c,d\n,,,x\nx",
		"only\nv1\n\nv2\n   ",
	}

	for _, text := range inputs {
		table, err := Parse(text, ModePermissive)
		require.NoError(t, err)
		for _, row := range table.Rows {
			assert.Len(t, row, len(table.Headers))
			assert.True(t, hasValue(rowValues(row)), "blank row retained: %v", row)
		}
	}

	table, _ := Parse(inputs[0], ModePermissive)
	assert.Len(t, table.Rows, 4)
	table, _ = Parse(inputs[2], ModePermissive)
	assert.Len(t, table.Rows, 2)
}

func rowValues(r Row) []string {
	out := make([]string, 0, len(r))
	for _, v := range r {
		out = append(out, v)
	}
	return out
}
