package emit

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SpaceshipxDev/creationfromzeus/internal/estimate"
)

const productionSheetName = "生产单"

// Fixed column widths for the 9-column production band.
var productionWidths = []float64{6, 14, 16, 16, 14, 12, 8, 14, 14}

// ProductionOrder renders the reconciled layout document into a production
// order workbook, embedding matched preview images into the image column.
func ProductionOrder(doc *estimate.LayoutDocument, images map[string][]byte) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(productionSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return nil, fmt.Errorf("styles: %w", err)
	}

	row := 1
	for _, r := range doc.Rows {
		embedded := false
		switch r.Kind {
		case estimate.RowTitle:
			setCell(f, productionSheetName, 1, row, r.Text, styles.title)
			mergeAcross(f, productionSheetName, row, 1, r.MergeCols)
		case estimate.RowHeader:
			for _, c := range r.Cells {
				style := styles.value
				if c.Style == "label" {
					style = styles.label
				}
				setCell(f, productionSheetName, c.Col, row, c.Value, style)
			}
		case estimate.RowTableHeader:
			for i, h := range r.Headers {
				setCell(f, productionSheetName, i+1, row, h, styles.tableHeader)
			}
		case estimate.RowData:
			for _, c := range r.Cells {
				if c.Col == estimate.ColImage {
					ok, err := embedImage(f, productionSheetName, c.Col, row, c.Value, images)
					if err != nil {
						return nil, err
					}
					if ok {
						embedded = true
						continue
					}
				}
				setCell(f, productionSheetName, c.Col, row, c.Value, styles.tableCell)
			}
		}
		height := r.Height
		if embedded && height < imageRowHeight {
			height = imageRowHeight
		}
		if height > 0 {
			if err := f.SetRowHeight(productionSheetName, row, height); err != nil {
				return nil, err
			}
		}
		row++
	}

	for i, w := range productionWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(productionSheetName, col, col, w); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
