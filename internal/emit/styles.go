// Package emit renders reconciled documents into formatted XLSX workbooks.
// Structural content (values, merges, dimensions) is deterministic for a
// fixed input; only writer-stamped metadata varies.
package emit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row height used whenever a preview image is embedded.
const imageRowHeight = 60.0

type styleSet struct {
	title       int
	label       int
	value       int
	tableHeader int
	tableCell   int
	boilerplate int
}

func newStyleSet(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.label, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.value, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.tableHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"EEEEEE"}},
	}); err != nil {
		return s, err
	}
	if s.tableCell, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	if s.boilerplate, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 9},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	return s, nil
}

// embedImage anchors the named preview into cell (col,row) when its bytes
// are present in the map. Absent bytes are not an error: the row simply
// keeps its default height.
func embedImage(f *excelize.File, sheet string, col, row int, name string, images map[string][]byte) (bool, error) {
	data, ok := images[strings.ToLower(name)]
	if !ok || len(data) == 0 {
		return false, nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".png"
	}
	if err := f.AddPictureFromBytes(sheet, cell, &excelize.Picture{
		Extension: ext,
		File:      data,
		Format: &excelize.GraphicOptions{
			AutoFit:     true,
			Positioning: "oneCell",
		},
	}); err != nil {
		return false, fmt.Errorf("embed image %q: %w", name, err)
	}
	return true, nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any, style int) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return
	}
	_ = f.SetCellValue(sheet, cell, value)
	if style > 0 {
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
}

func mergeAcross(f *excelize.File, sheet string, row, fromCol, toCol int) {
	from, err1 := excelize.CoordinatesToCellName(fromCol, row)
	to, err2 := excelize.CoordinatesToCellName(toCol, row)
	if err1 != nil || err2 != nil {
		return
	}
	_ = f.MergeCell(sheet, from, to)
}
