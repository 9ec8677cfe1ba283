package leadimport

import (
	"maps"

	"engage-api/internal/domain"
)

// Materialize builds one new Lead per row. Unmapped canonical fields read as
// "" and CustomFields keeps a copy of the whole row. Nothing else is touched.
func Materialize(campaignID string, rows []Row, fields []domain.DataField) []domain.Lead {
	m := NewMapperFrom(fields)
	leads := make([]domain.Lead, 0, len(rows))

	for _, row := range rows {
		leads = append(leads, domain.Lead{
			ID:           domain.NewID(),
			CampaignID:   campaignID,
			Name:         cell(row, m.Column(domain.FieldName)),
			Email:        cell(row, m.Column(domain.FieldEmail)),
			Phone:        cell(row, m.Column(domain.FieldPhone)),
			Company:      cell(row, m.Column(domain.FieldCompany)),
			Location:     cell(row, m.Column(domain.FieldLocation)),
			Status:       domain.LeadStatusNew,
			CustomFields: maps.Clone(map[string]string(row)),
		})
	}
	return leads
}

func cell(row Row, column string) string {
	if column == "" {
		return ""
	}
	return row[column]
}
