package leadimport

import (
	"strings"

	"engage-api/internal/domain"
)

// Mapper mantém o mapeamento campo → coluna de uma importação.
// Não há restrição de unicidade entre colunas: dois campos podem apontar para a mesma.
type Mapper struct {
	fields []domain.DataField
}

// NewMapper starts from the canonical fields, all unmapped.
func NewMapper() *Mapper {
	return &Mapper{fields: domain.DefaultCampaignSettings().DataFields}
}

// NewMapperFrom applies an existing mapping (e.g. from a create request) over
// the canonical fields, so Name/Email/Phone/Company/Location are always present
// and canonical entries keep their fixed required flag and type.
func NewMapperFrom(fields []domain.DataField) *Mapper {
	m := NewMapper()
	for _, f := range fields {
		name := strings.TrimSpace(f.FieldName)
		m.Upsert(name, f.CSVColumn)
		if _, canonical := domain.LookupCanonical(name); !canonical {
			custom := &m.fields[m.index(name)]
			custom.Required = f.Required
			if f.Type.IsValid() {
				custom.Type = f.Type
			}
		}
	}
	return m
}

// Upsert maps fieldName to csvColumn, overwriting an existing entry in place
// or appending a new one. Canonical fields keep their required flag and type;
// custom fields are optional text.
func (m *Mapper) Upsert(fieldName, csvColumn string) {
	fieldName = strings.TrimSpace(fieldName)
	csvColumn = strings.TrimSpace(csvColumn)

	if i := m.index(fieldName); i >= 0 {
		m.fields[i].CSVColumn = csvColumn
		return
	}

	field := domain.DataField{FieldName: fieldName, CSVColumn: csvColumn, Type: domain.FieldTypeText}
	if c, ok := domain.LookupCanonical(fieldName); ok {
		field.Required = c.Required
		field.Type = c.Type
	}
	m.fields = append(m.fields, field)
}

func (m *Mapper) index(fieldName string) int {
	for i, f := range m.fields {
		if f.FieldName == fieldName {
			return i
		}
	}
	return -1
}

// Column returns the column mapped to fieldName ("" if unmapped).
func (m *Mapper) Column(fieldName string) string {
	if i := m.index(fieldName); i >= 0 {
		return m.fields[i].CSVColumn
	}
	return ""
}

// Fields returns a copy of the mapping in insertion order.
func (m *Mapper) Fields() []domain.DataField {
	return append([]domain.DataField(nil), m.fields...)
}

// Validate reports required fields without a column and, when headers are
// given, mapped columns missing from them.
func (m *Mapper) Validate(headers []string) error {
	if err := domain.ValidateDataFields(m.fields); err != nil {
		return err
	}
	if headers == nil {
		return nil
	}
	return domain.ValidateColumns(m.fields, headers)
}

// headerAliases: nomes de coluna normalizados reconhecidos por SuggestMapping.
var headerAliases = map[string][]string{
	domain.FieldName:     {"name", "fullname", "full_name", "contactname", "leadname", "nome", "nomecompleto"},
	domain.FieldEmail:    {"email", "e-mail", "mail", "emailaddress", "email_address", "workemail"},
	domain.FieldPhone:    {"phone", "phonenumber", "phone_number", "mobile", "cell", "telephone", "tel", "telefone", "celular", "whatsapp"},
	domain.FieldCompany:  {"company", "companyname", "organization", "organisation", "org", "business", "empresa"},
	domain.FieldLocation: {"location", "city", "address", "region", "state", "country", "cidade", "endereco"},
}

// SuggestMapping auto-maps canonical fields by header name. The first header
// matching an alias wins; unmatched fields stay unmapped.
func SuggestMapping(headers []string) *Mapper {
	m := NewMapper()
	for _, c := range domain.CanonicalFields {
		for _, h := range headers {
			if matchesAlias(h, headerAliases[c.Name]) {
				m.Upsert(c.Name, h)
				break
			}
		}
	}
	return m
}

func matchesAlias(header string, aliases []string) bool {
	n := normalizeHeader(header)
	if n == "" {
		return false
	}
	for _, a := range aliases {
		if n == normalizeHeader(a) {
			return true
		}
	}
	return false
}

// normalizeHeader lowercases and drops spaces, '_', '-' and '.'.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch r {
		case ' ', '_', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
