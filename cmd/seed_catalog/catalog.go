package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/inventory"
)

// catalogRow una fila válida del CSV.
type catalogRow struct {
	Reference    string
	Name         string
	Category     string
	Brand        string
	PurchaseCost decimal.Decimal
	SalePrice    decimal.Decimal
	Stock        int
	StockMinimum int
}

var columns = []string{"reference", "name", "category", "brand", "purchase_cost", "sale_price", "stock", "stock_minimum"}

// decodeReader envuelve r según charset. En "auto", latin1 si el contenido no es UTF-8 válido.
func decodeReader(r io.Reader, charset string, sample []byte) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "auto", "":
		if utf8.Valid(sample) {
			return r, nil
		}
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	}
	return nil, fmt.Errorf("charset no soportado: %s", charset)
}

// parseCatalog lee el CSV con cabecera. El separador se deduce de la cabecera.
func parseCatalog(r io.Reader) ([]catalogRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	header, _, _ := strings.Cut(text, "\n")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = ','
	if strings.Count(header, ";") > strings.Count(header, ",") {
		cr.Comma = ';'
	}
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("CSV vacío")
	}
	idx, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	rows := make([]catalogRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		row, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if prev, ok := seen[row.Reference]; ok {
			return nil, fmt.Errorf("línea %d: referencia %s repetida (línea %d)", line, row.Reference, prev)
		}
		seen[row.Reference] = line
		rows = append(rows, row)
	}
	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok && c != "brand" {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}
	return idx, nil
}

func parseRow(rec []string, idx map[string]int) (catalogRow, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	row := catalogRow{
		Reference: get("reference"),
		Name:      get("name"),
		Category:  strings.ToLower(get("category")),
		Brand:     get("brand"),
	}
	if row.Reference == "" || row.Name == "" {
		return row, errors.New("reference y name son obligatorios")
	}
	if !entity.IsValidCategory(row.Category) {
		return row, fmt.Errorf("categoría desconocida: %s", row.Category)
	}

	var err error
	if row.PurchaseCost, err = parseAmount(get("purchase_cost")); err != nil {
		return row, fmt.Errorf("purchase_cost: %w", err)
	}
	if row.SalePrice, err = parseAmount(get("sale_price")); err != nil {
		return row, fmt.Errorf("sale_price: %w", err)
	}
	if row.Stock, err = parseCount(get("stock")); err != nil {
		return row, fmt.Errorf("stock: %w", err)
	}
	if row.StockMinimum, err = parseCount(get("stock_minimum")); err != nil {
		return row, fmt.Errorf("stock_minimum: %w", err)
	}
	return row, nil
}

// parseAmount acepta coma decimal y separador de miles con espacio ("1 099,99").
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "€", "").Replace(s)
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("importe negativo")
	}
	return d, nil
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("valor negativo")
	}
	return n, nil
}

// writeSQL escribe un INSERT idempotente por producto (ON CONFLICT por referencia) y el
// movimiento Entrée inicial cuando hay stock.
func writeSQL(w io.Writer, rows []catalogRow, source string, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Catálogo inicial generado desde %s (%s)\n", source, now.Format(time.RFC3339))
	b.WriteString("BEGIN;\n\n")
	for _, r := range rows {
		id := uuid.New().String()
		status := inventory.ComputeStatus(r.Stock, r.StockMinimum, "")
		fmt.Fprintf(&b, "INSERT INTO products (id, reference, name, category, brand, purchase_cost, sale_price, stock_on_hand, stock_minimum, status)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', '%s', %s, %s, %d, %d, '%s')\n",
			id, escapeSQL(r.Reference), escapeSQL(r.Name), r.Category, escapeSQL(r.Brand),
			r.PurchaseCost.String(), r.SalePrice.StringFixed(2), r.Stock, r.StockMinimum, escapeSQL(status))
		b.WriteString("ON CONFLICT (reference) DO NOTHING;\n")
		if r.Stock > 0 {
			fmt.Fprintf(&b, "INSERT INTO stock_movements (id, product_id, kind, delta, stock_before, stock_after, reference, unit_cost, note)\n")
			fmt.Fprintf(&b, "SELECT '%s', id, '%s', %d, 0, %d, 'STOCK-INITIAL', %s, 'stock initial' FROM products WHERE id = '%s';\n",
				uuid.New().String(), entity.MovementKindIn, r.Stock, r.Stock, r.PurchaseCost.String(), id)
		}
		b.WriteString("\n")
	}
	b.WriteString("COMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
