package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

func TestCountSheet_IdaYVuelta(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	items := []entity.CatalogItem{
		{ID: "luva", Code: "EPI-002", Description: "Luva de raspa", Unit: "PAR", Quantity: 8},
		{ID: "bota", Code: "EPI-001", Description: "Bota de segurança", Unit: "PAR", Quantity: 3},
	}
	s, err := entity.NewCountSession("s-1", entity.ScopeAll(), "Maria", items, now)
	require.NoError(t, err)
	q := 7
	_, err = s.RecordCount("luva", &q, now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCountSheet(&buf, s, items))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	desc, _ := f.GetCellValue(sheetName, "C3")
	assert.Equal(t, "Bota de segurança", desc)
	formula, _ := f.GetCellFormula(sheetName, "G2")
	assert.Equal(t, `IF(F2="","",F2-E2)`, formula)

	// el operador completa la fila de la bota
	require.NoError(t, f.SetCellValue(sheetName, "F3", 4))
	var filled bytes.Buffer
	require.NoError(t, f.Write(&filled))
	_ = f.Close()

	counts, err := ReadCountSheet(&filled)
	require.NoError(t, err)
	assert.Equal(t, []SheetCount{
		{Row: 2, ItemID: "luva", PhysicalQty: 7},
		{Row: 3, ItemID: "bota", PhysicalQty: 4},
	}, counts)
}

func TestReadCountSheet_Errores(t *testing.T) {
	build := func(rows [][]interface{}) *bytes.Buffer {
		f := excelize.NewFile()
		for r, row := range rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				_ = f.SetCellValue("Sheet1", cell, v)
			}
		}
		var buf bytes.Buffer
		_ = f.Write(&buf)
		return &buf
	}

	_, err := ReadCountSheet(build([][]interface{}{{"Código", "Qtd"}}))
	assert.Error(t, err, "sin columnas requeridas")

	_, err = ReadCountSheet(build([][]interface{}{{"ID", "Qtd física"}, {"luva", "muitas"}}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fila 2")

	_, err = ReadCountSheet(build([][]interface{}{{"ID", "Qtd física"}, {"luva", -1}}))
	assert.Error(t, err)

	counts, err := ReadCountSheet(build([][]interface{}{{"ID", "Qtd física"}, {"luva", ""}, {"bota", 0}}))
	require.NoError(t, err)
	assert.Equal(t, []SheetCount{{Row: 3, ItemID: "bota", PhysicalQty: 0}}, counts)

	_, err = ReadCountSheet(bytes.NewBufferString("no es xlsx"))
	assert.Error(t, err)
}
