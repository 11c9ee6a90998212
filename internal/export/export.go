// Package export encodes transaction records for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"fintrack/internal/core"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Row is the flat form of a record shared by every encoder.
type Row struct {
	Type        string `json:"type" yaml:"type"`
	ID          string `json:"id" yaml:"id"`
	Date        string `json:"date" yaml:"date"`
	Category    string `json:"category" yaml:"category"`
	Amount      string `json:"amount" yaml:"amount"`
	Description string `json:"description" yaml:"description"`
}

// Encoder turns rows into a file body.
type Encoder interface {
	EncodeRows(rows []Row) ([]byte, error)
}

// ParseFormat accepts csv, json, yaml or yml. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func EncoderFor(f Format) (Encoder, error) {
	switch f {
	case FormatCSV:
		return CSVEncoder{}, nil
	case FormatJSON:
		return JSONEncoder{}, nil
	case FormatYAML:
		return YAMLEncoder{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv; charset=utf-8"
	}
}

func (f Format) FileExtension() string {
	return "." + string(f)
}

// Filename builds the attachment name, e.g. "expenses.csv".
func Filename(t core.TransactionType, f Format) string {
	return string(t) + "s" + f.FileExtension()
}

// Rows flattens records in their given order. Amounts keep two decimals.
func Rows(txs []core.Transaction) []Row {
	out := make([]Row, 0, len(txs))
	for _, t := range txs {
		out = append(out, Row{
			Type:        string(t.Type),
			ID:          t.ID,
			Date:        t.Date.String(),
			Category:    t.Category,
			Amount:      t.Amount.Fixed(),
			Description: t.Description,
		})
	}
	return out
}

// Encode flattens and encodes in one step.
func Encode(f Format, txs []core.Transaction) ([]byte, error) {
	enc, err := EncoderFor(f)
	if err != nil {
		return nil, err
	}
	return enc.EncodeRows(Rows(txs))
}

var csvHeader = []string{"type", "id", "date", "category", "amount", "description"}

type CSVEncoder struct{}

func (CSVEncoder) EncodeRows(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{r.Type, csvText(r.ID), r.Date, csvText(r.Category), r.Amount, csvText(r.Description)}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// csvText quotes free-text cells that a spreadsheet would evaluate as a formula.
func csvText(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

type JSONEncoder struct{}

func (JSONEncoder) EncodeRows(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	return json.MarshalIndent(rows, "", "  ")
}

type YAMLEncoder struct{}

func (YAMLEncoder) EncodeRows(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	return yaml.Marshal(rows)
}
