// Package estimate holds the structured documents the extraction pipeline
// produces: the row-oriented production order layout and the nested quotation
// record. Both are built fresh per request from parsed model output, resolved
// once by the reconciler and consumed once by their emitter.
package estimate

import "fmt"

// RowKind discriminates the layout row variants.
type RowKind string

const (
	RowTitle       RowKind = "title"
	RowHeader      RowKind = "header"
	RowTableHeader RowKind = "tableHeader"
	RowData        RowKind = "data"
)

// ProductionColumns is the fixed 9-column schema of the production order
// table: sequence, image, part number, part name, spec, material, quantity,
// process, surface treatment.
var ProductionColumns = []string{
	"序号", "图片", "零件号", "零件名称", "规格", "材质", "数量", "工艺", "表面处理",
}

// ProductionColumnCount is the width of the production table band.
const ProductionColumnCount = 9

// Column positions inside a data row (1-based).
const (
	ColSeq        = 1
	ColImage      = 2
	ColPartNumber = 3
	ColPartName   = 4
)

// Cell is one positioned cell inside a header or data row. Style is only
// meaningful on header-detail rows ("label" or "value").
type Cell struct {
	Col   int    `json:"col"`
	Value string `json:"value"`
	Style string `json:"style,omitempty"`
}

// LayoutRow is one row of the production order sheet as extracted. Exactly
// one variant's fields are populated depending on Kind.
type LayoutRow struct {
	Kind RowKind `json:"type"`

	// title
	Text      string `json:"text,omitempty"`
	MergeCols int    `json:"mergeCols,omitempty"`

	// header + data
	Cells []Cell `json:"cells,omitempty"`

	// tableHeader
	Headers []string `json:"headers,omitempty"`

	Height float64 `json:"height,omitempty"`
}

// LayoutDocument is the ordered production order layout. Row order is
// preserve-as-extracted.
type LayoutDocument struct {
	Rows []LayoutRow
}

// DataCell returns the value at a 1-based column of a data row, or "".
func (r *LayoutRow) DataCell(col int) string {
	for _, c := range r.Cells {
		if c.Col == col {
			return c.Value
		}
	}
	return ""
}

// SetDataCell overwrites the value at a 1-based column of a data row.
func (r *LayoutRow) SetDataCell(col int, value string) {
	for i := range r.Cells {
		if r.Cells[i].Col == col {
			r.Cells[i].Value = value
			return
		}
	}
	r.Cells = append(r.Cells, Cell{Col: col, Value: value})
}

// Validate checks the per-variant required fields: a title row needs text and
// a merge span, a header row needs at least one cell, and a data row needs
// exactly one value per column of the 9-column schema.
func (d *LayoutDocument) Validate() error {
	for i, row := range d.Rows {
		switch row.Kind {
		case RowTitle:
			if row.Text == "" || row.MergeCols <= 0 {
				return fmt.Errorf("row %d: title row missing text or merge span", i+1)
			}
		case RowHeader:
			if len(row.Cells) == 0 {
				return fmt.Errorf("row %d: header row has no cells", i+1)
			}
		case RowTableHeader:
			if len(row.Headers) == 0 {
				return fmt.Errorf("row %d: table header row has no headers", i+1)
			}
		case RowData:
			if len(row.Cells) != ProductionColumnCount {
				return fmt.Errorf("row %d: data row has %d cells, want %d", i+1, len(row.Cells), ProductionColumnCount)
			}
			seen := make(map[int]bool, ProductionColumnCount)
			for _, c := range row.Cells {
				if c.Col < 1 || c.Col > ProductionColumnCount {
					return fmt.Errorf("row %d: data cell column %d out of range", i+1, c.Col)
				}
				if seen[c.Col] {
					return fmt.Errorf("row %d: duplicate data cell column %d", i+1, c.Col)
				}
				seen[c.Col] = true
			}
		default:
			return fmt.Errorf("row %d: unknown row type %q", i+1, row.Kind)
		}
	}
	return nil
}

// DataRows returns pointers to the data rows in document order.
func (d *LayoutDocument) DataRows() []*LayoutRow {
	var out []*LayoutRow
	for i := range d.Rows {
		if d.Rows[i].Kind == RowData {
			out = append(out, &d.Rows[i])
		}
	}
	return out
}

// CompanyInfo is one party block on the quotation.
type CompanyInfo struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Tel     string `json:"tel"`
	Fax     string `json:"fax"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ProductLine is one quoted part. Image starts as the part-identifier
// placeholder emitted by extraction and is overwritten with a rendered
// preview filename by the reconciler when one matches; it is never empty
// after a successful extraction.
type ProductLine struct {
	Seq              int    `json:"seq"`
	Image            string `json:"image"`
	PartName         string `json:"partName"`
	SurfaceTreatment string `json:"surfaceTreatment"`
	Material         string `json:"material"`
	Quantity         string `json:"quantity"`
	UnitPrice        string `json:"unitPrice"`
	LineTotal        string `json:"lineTotal"`
	Notes            string `json:"notes"`
}

// QuotationDocument is the nested quotation record.
type QuotationDocument struct {
	QuoteNumber        string        `json:"quoteNumber"`
	PartyA             CompanyInfo   `json:"partyA"`
	PartyB             CompanyInfo   `json:"partyB"`
	Products           []ProductLine `json:"products"`
	PaymentTerms       string        `json:"paymentTerms"`
	DeliveryDate       string        `json:"deliveryDate"`
	AcceptanceStandard string        `json:"acceptanceStandard"`
	Validity           string        `json:"validity"`
	Notice             string        `json:"notice"`
	SignatureDate      string        `json:"signatureDate"`
}

// Validate checks the field presence the emitters rely on.
func (q *QuotationDocument) Validate() error {
	if q.QuoteNumber == "" {
		return fmt.Errorf("quotation missing quote number")
	}
	for i, p := range q.Products {
		if p.Image == "" {
			return fmt.Errorf("product line %d: empty image key", i+1)
		}
	}
	return nil
}
