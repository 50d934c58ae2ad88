// Package workbook flattens an arbitrary spreadsheet into a bounded,
// address-annotated text transcript for inclusion in a model prompt.
package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Scan window ceilings. Generous for typical specification sheets; nothing
// beyond them is ever read.
const (
	MaxScanRows = 200
	MaxScanCols = 50

	// Stop scanning a sheet after this many consecutive fully-empty rows,
	// once any data has been seen.
	emptyRowStop = 10
)

// Transcript renders every sheet of the workbook at path into one
// order-preserving text dump: one line per non-empty row in the form
// `Row <n>: [<addr>: "<value>"] ...`, followed by merged-range metadata.
// Output is stable for identical input.
func Transcript(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		if err := writeSheet(&b, f, sheet); err != nil {
			return "", fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}
	return b.String(), nil
}

func writeSheet(b *strings.Builder, f *excelize.File, sheet string) error {
	fmt.Fprintf(b, "=== Sheet: %s ===\n", sheet)

	seenData := false
	emptyRun := 0
	for row := 1; row <= MaxScanRows; row++ {
		cells, err := scanRow(f, sheet, row)
		if err != nil {
			return err
		}
		if len(cells) == 0 {
			if seenData {
				emptyRun++
				if emptyRun >= emptyRowStop {
					break
				}
			}
			continue
		}
		seenData = true
		emptyRun = 0
		fmt.Fprintf(b, "Row %d: %s\n", row, strings.Join(cells, " "))
	}

	if !seenData {
		b.WriteString("(no data found)\n")
		return nil
	}

	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return fmt.Errorf("merged cells: %w", err)
	}
	if len(merged) > 0 {
		ranges := make([]string, 0, len(merged))
		for _, m := range merged {
			ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
		}
		fmt.Fprintf(b, "Merged: %s\n", strings.Join(ranges, ", "))
	}
	return nil
}

func scanRow(f *excelize.File, sheet string, row int) ([]string, error) {
	var cells []string
	for col := 1; col <= MaxScanCols; col++ {
		addr, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return nil, err
		}
		value, err := f.GetCellValue(sheet, addr)
		if err != nil {
			// Out-of-range or unreadable cell contributes nothing.
			continue
		}
		value = strings.TrimSpace(value)
		// Tag formula cells so the model can see provenance. A formula cell
		// counts as data even when it has no cached result.
		formula, _ := f.GetCellFormula(sheet, addr)
		switch {
		case formula != "":
			cells = append(cells, fmt.Sprintf("[%s: FORMULA: %s = %q]", addr, formula, value))
		case value != "":
			cells = append(cells, fmt.Sprintf("[%s: %q]", addr, value))
		}
	}
	return cells, nil
}
