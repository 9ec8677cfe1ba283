package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// FieldType é o tipo declarado de um DataField.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeEmail  FieldType = "email"
	FieldTypePhone  FieldType = "phone"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
)

func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypePhone, FieldTypeNumber, FieldTypeDate:
		return true
	}
	return false
}

func (t *FieldType) Scan(src interface{}) error { return scanEnum(t, src, FieldTypeText) }

func (t FieldType) Value() (driver.Value, error) { return enumValue(t) }

// Canonical lead attributes.
const (
	FieldName     = "Name"
	FieldEmail    = "Email"
	FieldPhone    = "Phone"
	FieldCompany  = "Company"
	FieldLocation = "Location"
)

// DataField liga um atributo do lead a uma coluna do CSV.
type DataField struct {
	FieldName string    `json:"fieldName" validate:"required,max=100"`
	CSVColumn string    `json:"csvColumn" validate:"max=255"`
	Required  bool      `json:"required"`
	Type      FieldType `json:"type" validate:"required,oneof=text email phone number date"`
}

// CanonicalField describes one of the fixed lead attributes.
type CanonicalField struct {
	Name     string    `json:"fieldName"`
	Required bool      `json:"required"`
	Type     FieldType `json:"type"`
}

// CanonicalFields é a lista apresentada ao usuário no mapeamento, em ordem.
var CanonicalFields = []CanonicalField{
	{Name: FieldName, Required: true, Type: FieldTypeText},
	{Name: FieldEmail, Required: true, Type: FieldTypeEmail},
	{Name: FieldPhone, Required: false, Type: FieldTypePhone},
	{Name: FieldCompany, Required: false, Type: FieldTypeText},
	{Name: FieldLocation, Required: false, Type: FieldTypeText},
}

// LookupCanonical returns the canonical definition for fieldName (exact match).
func LookupCanonical(fieldName string) (CanonicalField, bool) {
	for _, f := range CanonicalFields {
		if f.Name == fieldName {
			return f, true
		}
	}
	return CanonicalField{}, false
}

var (
	// ErrRequiredFieldUnmapped: campo obrigatório sem coluna de CSV.
	ErrRequiredFieldUnmapped = errors.New("required field is not mapped to a csv column")

	// ErrUnknownColumn: mapeamento aponta para coluna ausente no cabeçalho.
	ErrUnknownColumn = errors.New("mapped csv column not found in headers")
)

// MappingError lists the offending fields of a mapping validation.
type MappingError struct {
	Err    error
	Fields []string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), strings.Join(e.Fields, ", "))
}

func (e *MappingError) Unwrap() error { return e.Err }

// FieldErrors renders the error as per-field messages for the HTTP envelope.
func (e *MappingError) FieldErrors() map[string]string {
	msg := "must be mapped to a csv column"
	if errors.Is(e.Err, ErrUnknownColumn) {
		msg = "mapped column does not exist in the csv header"
	}
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f] = msg
	}
	return out
}

// ValidateDataFields checks the required-mapping invariant. Canonical
// required fields count as required even when absent from fields.
func ValidateDataFields(fields []DataField) error {
	mapped := make(map[string]string, len(fields))
	var missing []string

	for _, f := range fields {
		mapped[f.FieldName] = strings.TrimSpace(f.CSVColumn)
		if f.Required && strings.TrimSpace(f.CSVColumn) == "" {
			missing = append(missing, f.FieldName)
		}
	}
	for _, c := range CanonicalFields {
		if !c.Required {
			continue
		}
		if _, ok := mapped[c.Name]; !ok {
			missing = append(missing, c.Name)
		}
	}

	if len(missing) > 0 {
		return &MappingError{Err: ErrRequiredFieldUnmapped, Fields: missing}
	}
	return nil
}

// ValidateColumns checks that every mapped column exists in headers.
func ValidateColumns(fields []DataField, headers []string) error {
	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	var unknown []string
	for _, f := range fields {
		col := strings.TrimSpace(f.CSVColumn)
		if col != "" && !known[col] {
			unknown = append(unknown, f.FieldName)
		}
	}
	if len(unknown) > 0 {
		return &MappingError{Err: ErrUnknownColumn, Fields: unknown}
	}
	return nil
}
