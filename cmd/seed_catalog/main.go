// seed_catalog genera un script SQL para poblar categorías, productos y stock inicial
// a partir de una planilla CSV exportada del punto de venta.
//
// Uso: go run ./cmd/seed_catalog [-latin1] [ruta/catalogo.csv]
// Columnas: categoria;nombre;descripcion;precio;cantidad (separador ';' o ',').
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalog.sql
package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type catalogRow struct {
	Category    string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1 (Excel)")
	flag.Parse()

	csvPath := "catalogo.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var input io.Reader = f
	if *latin1 {
		input = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := parseCatalog(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	categories, err := writeSeed(out, rows, func() string { return uuid.New().String() })
	if err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d categorías, %d productos\n", outPath, categories, len(rows))
}

// parseCatalog lee la planilla. La primera fila es encabezado si su columna de precio no es numérica.
func parseCatalog(r io.Reader) ([]catalogRow, error) {
	br := bufio.NewReader(r)
	sep, err := detectSeparator(br)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(br)
	cr.Comma = sep
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var rows []catalogRow
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) < 4 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 4 columnas", line)
		}
		price, perr := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[3]), ",", "."))
		if perr != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("línea %d: precio inválido %q", line, rec[3])
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("línea %d: precio negativo", line)
		}
		row := catalogRow{
			Category:    strings.TrimSpace(rec[0]),
			Name:        strings.TrimSpace(rec[1]),
			Description: strings.TrimSpace(rec[2]),
			Price:       price.Round(2),
		}
		if row.Name == "" {
			return nil, fmt.Errorf("línea %d: nombre vacío", line)
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			qty, err := strconv.Atoi(strings.TrimSpace(rec[4]))
			if err != nil || qty < 0 {
				return nil, fmt.Errorf("línea %d: cantidad inválida %q", line, rec[4])
			}
			row.Quantity = qty
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func detectSeparator(br *bufio.Reader) (rune, error) {
	head, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, err
	}
	first := string(head)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';', nil
	}
	return ',', nil
}

// writeSeed escribe el SQL y devuelve cuántas categorías distintas generó.
func writeSeed(w io.Writer, rows []catalogRow, newID func() string) (int, error) {
	catIDs := make(map[string]string)
	for _, r := range rows {
		if r.Category != "" {
			if _, ok := catIDs[r.Category]; !ok {
				catIDs[r.Category] = ""
			}
		}
	}
	// Orden estable de categorías
	names := make([]string, 0, len(catIDs))
	for n := range catIDs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		catIDs[n] = newID()
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("-- Catálogo inicial (categorías, productos y stock)\n")
	bw.WriteString("-- Generado por cmd/seed_catalog\n\n")

	if len(names) > 0 {
		bw.WriteString("-- 1. Categorías\n")
		bw.WriteString("INSERT INTO categories (id, name) VALUES\n")
		for i, n := range names {
			sep := ","
			if i == len(names)-1 {
				sep = ""
			}
			fmt.Fprintf(bw, "  ('%s', '%s')%s\n", catIDs[n], escapeSQL(n), sep)
		}
		bw.WriteString("ON CONFLICT (id) DO NOTHING;\n\n")
	}

	bw.WriteString("-- 2. Productos y stock\n")
	for _, r := range rows {
		id := newID()
		category := "NULL"
		if r.Category != "" {
			category = "'" + catIDs[r.Category] + "'"
		}
		fmt.Fprintf(bw, "INSERT INTO products (id, name, description, price, status, category_id)\n")
		fmt.Fprintf(bw, "VALUES ('%s', '%s', NULLIF('%s', ''), %s, 'active', %s)\nON CONFLICT (id) DO NOTHING;\n",
			id, escapeSQL(r.Name), escapeSQL(r.Description), r.Price.StringFixed(2), category)
		fmt.Fprintf(bw, "INSERT INTO stock (product_id, quantity, last_updated) VALUES ('%s', %d, now())\nON CONFLICT (product_id) DO NOTHING;\n", id, r.Quantity)
	}
	return len(names), bw.Flush()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
