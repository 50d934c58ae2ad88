package workbook

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func saveWorkbook(t *testing.T, f *excelize.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestTranscriptBasic(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "件号")
	f.SetCellValue("Sheet1", "B1", "材质")
	f.SetCellValue("Sheet1", "C1", "数量")
	f.SetCellValue("Sheet1", "A2", "BRK-01")
	f.SetCellValue("Sheet1", "B2", "6061铝")
	f.SetCellValue("Sheet1", "C2", 20)
	path := saveWorkbook(t, f)

	got, err := Transcript(path)
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if !strings.Contains(got, `Row 1: [A1: "件号"] [B1: "材质"] [C1: "数量"]`) {
		t.Errorf("missing header row, got:\n%s", got)
	}
	if !strings.Contains(got, `Row 2: [A2: "BRK-01"] [B2: "6061铝"] [C2: "20"]`) {
		t.Errorf("missing data row, got:\n%s", got)
	}
}

func TestTranscriptDeterministic(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	for r := 1; r <= 20; r++ {
		for c := 1; c <= 8; c++ {
			cell, _ := excelize.CoordinatesToCellName(c, r)
			f.SetCellValue("Sheet1", cell, fmt.Sprintf("v%d-%d", r, c))
		}
	}
	path := saveWorkbook(t, f)

	first, err := Transcript(path)
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := Transcript(path)
		if err != nil {
			t.Fatalf("Transcript repeat failed: %v", err)
		}
		if again != first {
			t.Fatalf("transcript not byte-identical across runs")
		}
	}
}

func TestTranscriptBounded(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	// Continuous data through the ceiling and beyond, so early stop never
	// kicks in before the window boundary.
	for r := 1; r <= MaxScanRows+5; r++ {
		cell, _ := excelize.CoordinatesToCellName(1, r)
		f.SetCellValue("Sheet1", cell, "in")
	}
	beyondRow, _ := excelize.CoordinatesToCellName(1, MaxScanRows+5)
	f.SetCellValue("Sheet1", beyondRow, "beyond-row")
	beyondCol, _ := excelize.CoordinatesToCellName(MaxScanCols+1, 1)
	f.SetCellValue("Sheet1", beyondCol, "beyond-col")
	path := saveWorkbook(t, f)

	got, err := Transcript(path)
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if strings.Contains(got, "beyond-row") {
		t.Errorf("row past ceiling leaked into transcript")
	}
	if strings.Contains(got, "beyond-col") {
		t.Errorf("column past ceiling leaked into transcript")
	}
	if !strings.Contains(got, fmt.Sprintf("Row %d:", MaxScanRows)) {
		t.Errorf("last in-window row missing")
	}
}

func TestTranscriptEarlyStop(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "top")
	// A long empty gap, then more data: the scan must stop at the gap.
	f.SetCellValue("Sheet1", "A50", "after-gap")
	path := saveWorkbook(t, f)

	got, err := Transcript(path)
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if !strings.Contains(got, "top") {
		t.Errorf("first row missing")
	}
	if strings.Contains(got, "after-gap") {
		t.Errorf("scan did not stop after empty-row run")
	}
}

func TestTranscriptFormulaTagged(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", 2)
	f.SetCellValue("Sheet1", "A2", 3)
	if err := f.SetCellFormula("Sheet1", "A3", "SUM(A1:A2)"); err != nil {
		t.Fatalf("set formula: %v", err)
	}
	path := saveWorkbook(t, f)

	got, err := Transcript(path)
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if !strings.Contains(got, "[A3: FORMULA: SUM(A1:A2)") {
		t.Errorf("formula cell not tagged, got:\n%s", got)
	}
}

func TestTranscriptEmptySheetMarker(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Empty"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	f.SetCellValue("Sheet1", "A1", "data")
	path := saveWorkbook(t, f)

	got, err := Transcript(path)
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if !strings.Contains(got, "=== Sheet: Empty ===\n(no data found)") {
		t.Errorf("empty sheet marker missing, got:\n%s", got)
	}
}

func TestTranscriptMergedRanges(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "title")
	if err := f.MergeCell("Sheet1", "A1", "C1"); err != nil {
		t.Fatalf("merge: %v", err)
	}
	path := saveWorkbook(t, f)

	got, err := Transcript(path)
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if !strings.Contains(got, "Merged: A1:C1") {
		t.Errorf("merged range metadata missing, got:\n%s", got)
	}
}
