package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type sweetRow struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Quantity int
}

var catalogHeader = []string{"name", "category", "price", "quantity"}

// parseCatalog lee el CSV. Si el contenido no es UTF-8 válido se decodifica como Windows-1252
// (exportaciones de Excel en Windows).
func parseCatalog(raw []byte) ([]sweetRow, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	r := csv.NewReader(src)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = len(catalogHeader)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), catalogHeader[i]) {
			return nil, fmt.Errorf("cabecera: se esperaba %s", strings.Join(catalogHeader, ","))
		}
	}

	var rows []sweetRow
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (sweetRow, error) {
	row := sweetRow{
		Name:     strings.TrimSpace(rec[0]),
		Category: strings.TrimSpace(rec[1]),
	}
	if row.Name == "" || row.Category == "" {
		return row, fmt.Errorf("name y category son requeridos")
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[2]), ",", "."))
	if err != nil || !price.IsPositive() {
		return row, fmt.Errorf("price inválido %q", rec[2])
	}
	qty, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil || qty < 0 {
		return row, fmt.Errorf("quantity inválido %q", rec[3])
	}
	row.Price = price.Round(2)
	row.Quantity = qty
	return row, nil
}

// writeSQL escribe un INSERT idempotente por dulce (no duplica name + category).
func writeSQL(w io.Writer, source string, rows []sweetRow) error {
	var b strings.Builder
	b.WriteString("-- +goose Up\n")
	b.WriteString("-- Catálogo inicial de dulces\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", source)
	for _, r := range rows {
		name, category := escapeSQL(r.Name), escapeSQL(r.Category)
		b.WriteString("INSERT INTO sweets (name, category, price, quantity)\n")
		fmt.Fprintf(&b, "SELECT '%s', '%s', %s, %d\n", name, category, r.Price.StringFixed(2), r.Quantity)
		fmt.Fprintf(&b, "WHERE NOT EXISTS (SELECT 1 FROM sweets WHERE name = '%s' AND category = '%s');\n", name, category)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
