// Package excel exporta e importa planillas de conteo físico (XLSX) para operadores que cuentan en
// papel o tablet.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

const sheetName = "Contagem"

// ContentType MIME de las planillas generadas.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"ID", "Código", "Descrição", "Unidade", "Qtd sistema", "Qtd física", "Diferença"}

const (
	colID       = 0
	colPhysical = 5
)

// SheetCount conteo leído de una fila de la planilla.
type SheetCount struct {
	Row         int
	ItemID      string
	PhysicalQty int
}

// WriteCountSheet escribe una fila por ítem del alcance de la sesión, en el orden de la línea base.
// Las cantidades físicas ya registradas vienen precargadas.
func WriteCountSheet(w io.Writer, session *entity.CountSession, items []entity.CatalogItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	inputStyle, err := f.NewStyle(&excelize.Style{
		Fill:       excelize.Fill{Type: "pattern", Color: []string{"FFF2CC"}, Pattern: 1},
		Protection: &excelize.Protection{Locked: false},
	})
	if err != nil {
		return err
	}

	widths := []float64{38, 14, 42, 10, 12, 12, 12}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, colName, colName, widths[i])
	}

	byID := make(map[string]entity.CatalogItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	for i, line := range session.Lines() {
		r := i + 2
		it := byID[line.ItemID]
		values := []interface{}{line.ItemID, it.Code, it.Description, it.Unit, line.SystemQty}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		physical, _ := excelize.CoordinatesToCellName(colPhysical+1, r)
		if line.PhysicalQty != nil {
			_ = f.SetCellValue(sheetName, physical, *line.PhysicalQty)
		}
		_ = f.SetCellStyle(sheetName, physical, physical, inputStyle)
		diff, _ := excelize.CoordinatesToCellName(colPhysical+2, r)
		_ = f.SetCellFormula(sheetName, diff, fmt.Sprintf(`IF(F%d="","",F%d-E%d)`, r, r, r))
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	return f.Write(w)
}

// ReadCountSheet lee una planilla completada. Las filas con "Qtd física" vacía se ignoran; un valor
// no entero o negativo es un error que indica la fila.
func ReadCountSheet(r io.Reader) ([]SheetCount, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("planilla inválida: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("planilla sin hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("planilla vacía")
	}

	idCol, qtyCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case headers[colID]:
			idCol = i
		case headers[colPhysical]:
			qtyCol = i
		}
	}
	if idCol < 0 || qtyCol < 0 {
		return nil, fmt.Errorf("faltan las columnas %q y %q", headers[colID], headers[colPhysical])
	}

	var out []SheetCount
	for i, row := range rows[1:] {
		rowNum := i + 2
		if qtyCol >= len(row) || idCol >= len(row) {
			continue
		}
		raw := strings.TrimSpace(row[qtyCol])
		itemID := strings.TrimSpace(row[idCol])
		if raw == "" || itemID == "" {
			continue
		}
		q, err := strconv.Atoi(raw)
		if err != nil || q < 0 {
			return nil, fmt.Errorf("fila %d: cantidad física %q inválida", rowNum, raw)
		}
		out = append(out, SheetCount{Row: rowNum, ItemID: itemID, PhysicalQty: q})
	}
	return out, nil
}
