package leadimport

import "engage-api/internal/domain"

// PreviewSampleSize is how many rows a preview returns.
const PreviewSampleSize = 5

// Preview é o resultado da pré-visualização de um CSV: nada é persistido.
type Preview struct {
	Mode             Mode                    `json:"mode"`
	Headers          []string                `json:"headers"`
	RowCount         int                     `json:"rowCount"`
	SampleRows       []Row                   `json:"sampleRows"`
	SuggestedMapping []domain.DataField      `json:"suggestedMapping"`
	CanonicalFields  []domain.CanonicalField `json:"canonicalFields"`
	MissingRequired  []string                `json:"missingRequired"`
}

// BuildPreview parses text and suggests a mapping.
func BuildPreview(text string, mode Mode) (*Preview, error) {
	table, err := Parse(text, mode)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = ModePermissive
	}

	mapper := SuggestMapping(table.Headers)
	sample := table.Rows
	if len(sample) > PreviewSampleSize {
		sample = sample[:PreviewSampleSize]
	}

	p := &Preview{
		Mode:             mode,
		Headers:          table.Headers,
		RowCount:         len(table.Rows),
		SampleRows:       sample,
		SuggestedMapping: mapper.Fields(),
		CanonicalFields:  domain.CanonicalFields,
		MissingRequired:  []string{},
	}
	for _, f := range p.SuggestedMapping {
		if f.Required && f.CSVColumn == "" {
			p.MissingRequired = append(p.MissingRequired, f.FieldName)
		}
	}
	return p, nil
}
