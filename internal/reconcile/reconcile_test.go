package reconcile

import (
	"testing"

	"github.com/SpaceshipxDev/creationfromzeus/internal/estimate"
)

func dataRow(part string) estimate.LayoutRow {
	cells := make([]estimate.Cell, 0, estimate.ProductionColumnCount)
	for col := 1; col <= estimate.ProductionColumnCount; col++ {
		v := ""
		switch col {
		case estimate.ColSeq:
			v = "1"
		case estimate.ColImage, estimate.ColPartNumber:
			v = part
		case estimate.ColPartName:
			v = "bracket"
		}
		cells = append(cells, estimate.Cell{Col: col, Value: v})
	}
	return estimate.LayoutRow{Kind: estimate.RowData, Cells: cells}
}

func docs(part string) (*estimate.LayoutDocument, *estimate.QuotationDocument) {
	layout := &estimate.LayoutDocument{Rows: []estimate.LayoutRow{dataRow(part)}}
	quotation := &estimate.QuotationDocument{
		QuoteNumber: "Q-1",
		Products:    []estimate.ProductLine{{Seq: 1, Image: part, PartName: "bracket"}},
	}
	return layout, quotation
}

func TestResolvePrefixMatch(t *testing.T) {
	layout, quotation, files := (func() (*estimate.LayoutDocument, *estimate.QuotationDocument, []string) {
		l, q := docs("P100")
		return l, q, []string{"p100-rev2.png", "p200.png"}
	})()

	report := Resolve(layout, quotation, files)

	if got := layout.DataRows()[0].DataCell(estimate.ColImage); got != "p100-rev2.png" {
		t.Errorf("layout image = %q, want p100-rev2.png", got)
	}
	if got := quotation.Products[0].Image; got != "p100-rev2.png" {
		t.Errorf("quotation image = %q, want p100-rev2.png", got)
	}
	if report["P100"] != "p100-rev2.png" {
		t.Errorf("report = %v", report)
	}
}

func TestResolveNoMatchKeepsPlaceholder(t *testing.T) {
	layout, quotation := docs("BRK-01")
	report := Resolve(layout, quotation, []string{"p200.png"})

	if got := layout.DataRows()[0].DataCell(estimate.ColImage); got != "BRK-01" {
		t.Errorf("placeholder overwritten: %q", got)
	}
	if got := quotation.Products[0].Image; got != "BRK-01" {
		t.Errorf("placeholder overwritten: %q", got)
	}
	if len(report) != 0 {
		t.Errorf("unexpected report entries: %v", report)
	}
}

func TestResolveTieBreakStable(t *testing.T) {
	// Two candidates share the prefix; the first in sorted order must win,
	// whatever the enumeration order of the input slice.
	for i := 0; i < 5; i++ {
		layout, quotation := docs("P100")
		Resolve(layout, quotation, []string{"p100-z.png", "p100-a.png"})
		if got := quotation.Products[0].Image; got != "p100-a.png" {
			t.Fatalf("tie-break unstable: got %q, want p100-a.png", got)
		}
	}
}

func TestResolveEmptyPartIsSkipped(t *testing.T) {
	layout := &estimate.LayoutDocument{Rows: []estimate.LayoutRow{{
		Kind:  estimate.RowData,
		Cells: []estimate.Cell{{Col: estimate.ColImage, Value: ""}},
	}}}
	quotation := &estimate.QuotationDocument{QuoteNumber: "Q-1"}
	report := Resolve(layout, quotation, []string{"p100.png"})
	if len(report) != 0 {
		t.Errorf("empty part matched: %v", report)
	}
}
