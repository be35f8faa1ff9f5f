// seed_catalog genera el script SQL que carga el catálogo del almoxarifado a partir de la
// exportación CSV del sistema legado (separador ';', codificación Latin-1).
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.csv] [salida.sql]
// Por defecto lee catalogo.csv del directorio actual y escribe migrations/002_seed_catalog.sql.
//
// Columnas esperadas (cabecera obligatoria, orden libre):
// codigo;descricao;unidade;categoria;quantidade;minimo;maximo;epi
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogNamespace deriva IDs estables a partir del código: recargar el CSV actualiza en lugar de duplicar.
var catalogNamespace = uuid.MustParse("6f1c9a52-3c1e-4f0b-9a7e-2f4b8d0c5e11")

type seedItem struct {
	ID          string
	Code        string
	Description string
	Unit        string
	CategoryID  string
	Quantity    int
	Min         *int
	Max         *int
	IsEPI       bool
}

func main() {
	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "migrations", "002_seed_catalog.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	items, err := parseCatalog(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, items); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d ítems\n", outPath, len(items))
}

func parseCatalog(r io.Reader) ([]seedItem, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"codigo", "descricao"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []seedItem
	seen := make(map[string]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		code := get(rec, "codigo")
		if code == "" {
			continue
		}
		if prev, dup := seen[code]; dup {
			return nil, fmt.Errorf("línea %d: código %s repetido (línea %d)", line, code, prev)
		}
		seen[code] = line

		it := seedItem{
			ID:          uuid.NewSHA1(catalogNamespace, []byte(code)).String(),
			Code:        code,
			Description: get(rec, "descricao"),
			Unit:        strings.ToUpper(get(rec, "unidade")),
			CategoryID:  get(rec, "categoria"),
			IsEPI:       parseBool(get(rec, "epi")),
		}
		if it.Unit == "" {
			it.Unit = "UN"
		}
		if it.Quantity, err = parseQty(get(rec, "quantidade")); err != nil {
			return nil, fmt.Errorf("línea %d: quantidade: %w", line, err)
		}
		if it.Min, err = parseOptional(get(rec, "minimo")); err != nil {
			return nil, fmt.Errorf("línea %d: minimo: %w", line, err)
		}
		if it.Max, err = parseOptional(get(rec, "maximo")); err != nil {
			return nil, fmt.Errorf("línea %d: maximo: %w", line, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// parseQty acepta "1.234" y "12,0" como los exporta el sistema legado.
func parseQty(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ".", "")
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("valor negativo %d", n)
	}
	return n, nil
}

func parseOptional(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := parseQty(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "s", "sim", "1", "x", "true":
		return true
	}
	return false
}

func writeSQL(w io.Writer, items []seedItem) error {
	var b strings.Builder
	b.WriteString("-- Catálogo del almoxarifado\n")
	b.WriteString("-- Generado por cmd/seed_catalog desde la exportación CSV del sistema legado\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "INSERT INTO catalog_items (id, code, description, unit, category_id, quantity, min_quantity, max_quantity, is_epi)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', %s, %d, %s, %s, %t)\n",
			it.ID, escapeSQL(it.Code), escapeSQL(it.Description), escapeSQL(it.Unit),
			sqlText(it.CategoryID), it.Quantity, sqlInt(it.Min), sqlInt(it.Max), it.IsEPI)
		b.WriteString("ON CONFLICT (id) DO UPDATE SET description = EXCLUDED.description, unit = EXCLUDED.unit,\n")
		b.WriteString("  category_id = EXCLUDED.category_id, min_quantity = EXCLUDED.min_quantity,\n")
		b.WriteString("  max_quantity = EXCLUDED.max_quantity, is_epi = EXCLUDED.is_epi, updated_at = now();\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func sqlText(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
}

func sqlInt(v *int) string {
	if v == nil {
		return "NULL"
	}
	return strconv.Itoa(*v)
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
