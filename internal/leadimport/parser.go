// Package leadimport transforma CSV bruto em leads: parse, mapeamento de
// colunas para campos canônicos e materialização.
package leadimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mode seleciona o parser.
type Mode string

const (
	// ModePermissive divide em \n e depois em vírgula, sem aspas. Linhas
	// curtas são completadas com "" e células extras descartadas.
	ModePermissive Mode = "permissive"

	// ModeStrict segue RFC 4180 e rejeita linhas com contagem de colunas diferente do cabeçalho.
	ModeStrict Mode = "strict"
)

func (m Mode) IsValid() bool {
	return m == ModePermissive || m == ModeStrict
}

// ParseMode resolves a request value, falling back to def when empty.
func ParseMode(raw string, def Mode) (Mode, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return def, nil
	}
	m := Mode(raw)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
	return m, nil
}

var (
	// ErrEmptyCSV: sem cabeçalho utilizável.
	ErrEmptyCSV = errors.New("csv has no header row")

	// ErrMalformedRow só ocorre no modo strict.
	ErrMalformedRow = errors.New("malformed csv row")

	ErrInvalidMode = errors.New("invalid csv parse mode")
)

// Row é um registro com exatamente uma chave por coluna do cabeçalho.
type Row map[string]string

// Table é o resultado do parse.
type Table struct {
	Headers []string
	Rows    []Row
}

// Parse reads text with the given mode. Rows that are blank after trimming
// are dropped in both modes.
func Parse(text string, mode Mode) (*Table, error) {
	switch mode {
	case ModeStrict:
		return parseStrict(text)
	case ModePermissive, "":
		return parsePermissive(text)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

func parsePermissive(text string) (*Table, error) {
	lines := strings.Split(text, "\n")

	headers := splitTrim(lines[0])
	if !hasValue(headers) {
		return nil, ErrEmptyCSV
	}

	table := &Table{Headers: headers, Rows: []Row{}}
	for _, line := range lines[1:] {
		if row, ok := zip(headers, splitTrim(line)); ok {
			table.Rows = append(table.Rows, row)
		}
	}
	return table, nil
}

func parseStrict(text string) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	headers = trimAll(headers)
	if !hasValue(headers) {
		return nil, ErrEmptyCSV
	}

	table := &Table{Headers: headers, Rows: []Row{}}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ErrFieldCount e erros de aspas já trazem a linha
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		if row, ok := zip(headers, trimAll(record)); ok {
			table.Rows = append(table.Rows, row)
		}
	}
	return table, nil
}

// zip pairs values with headers. Missing cells become "" and extra cells are
// dropped. ok is false when every value is empty.
func zip(headers, values []string) (Row, bool) {
	row := make(Row, len(headers))
	nonEmpty := false
	for i, h := range headers {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		if v != "" {
			nonEmpty = true
		}
		row[h] = v
	}
	return row, nonEmpty
}

func splitTrim(line string) []string {
	return trimAll(strings.Split(line, ","))
}

func trimAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return values
}

func hasValue(values []string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}
