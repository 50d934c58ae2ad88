package emit

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/SpaceshipxDev/creationfromzeus/internal/estimate"
)

const quotationSheetName = "报价单"

var quotationWidths = []float64{6, 14, 16, 14, 12, 8, 10, 12, 18}

var quotationHeaders = []string{
	"序号", "图片", "零件名称", "表面处理", "材质", "数量", "单价", "金额", "备注",
}

// Quotation renders the reconciled quotation record into a quotation
// workbook: title, six two-block company-info rows, the product table with
// embedded previews, a totals row, the boilerplate rows and a signature row.
func Quotation(doc *estimate.QuotationDocument, images map[string][]byte) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(quotationSheetName)
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

	// Title carries the quote number.
	setCell(f, quotationSheetName, 1, 1, "报 价 单（编号："+doc.QuoteNumber+"）", styles.title)
	mergeAcross(f, quotationSheetName, 1, 1, estimate.ProductionColumnCount)
	if err := f.SetRowHeight(quotationSheetName, 1, 32); err != nil {
		return nil, err
	}

	// Company blocks, party A left, party B right.
	labels := []struct {
		label  string
		valueA string
		valueB string
	}{
		{"名称", doc.PartyA.Name, doc.PartyB.Name},
		{"联系人", doc.PartyA.Contact, doc.PartyB.Contact},
		{"电话", doc.PartyA.Tel, doc.PartyB.Tel},
		{"传真", doc.PartyA.Fax, doc.PartyB.Fax},
		{"邮箱", doc.PartyA.Email, doc.PartyB.Email},
		{"地址", doc.PartyA.Address, doc.PartyB.Address},
	}
	row := 2
	for _, l := range labels {
		setCell(f, quotationSheetName, 1, row, "甲方"+l.label+"：", styles.label)
		setCell(f, quotationSheetName, 2, row, l.valueA, styles.value)
		mergeAcross(f, quotationSheetName, row, 2, 4)
		setCell(f, quotationSheetName, 5, row, "乙方"+l.label+"：", styles.label)
		setCell(f, quotationSheetName, 6, row, l.valueB, styles.value)
		mergeAcross(f, quotationSheetName, row, 6, estimate.ProductionColumnCount)
		row++
	}

	// Product table.
	for i, h := range quotationHeaders {
		setCell(f, quotationSheetName, i+1, row, h, styles.tableHeader)
	}
	if err := f.SetRowHeight(quotationSheetName, row, 22); err != nil {
		return nil, err
	}
	row++

	var total float64
	var totalKnown bool
	for _, p := range doc.Products {
		embedded, err := embedImage(f, quotationSheetName, 2, row, p.Image, images)
		if err != nil {
			return nil, err
		}
		setCell(f, quotationSheetName, 1, row, p.Seq, styles.tableCell)
		if !embedded {
			setCell(f, quotationSheetName, 2, row, p.Image, styles.tableCell)
		}
		setCell(f, quotationSheetName, 3, row, p.PartName, styles.tableCell)
		setCell(f, quotationSheetName, 4, row, p.SurfaceTreatment, styles.tableCell)
		setCell(f, quotationSheetName, 5, row, p.Material, styles.tableCell)
		setCell(f, quotationSheetName, 6, row, p.Quantity, styles.tableCell)
		setCell(f, quotationSheetName, 7, row, p.UnitPrice, styles.tableCell)
		setCell(f, quotationSheetName, 8, row, p.LineTotal, styles.tableCell)
		setCell(f, quotationSheetName, 9, row, p.Notes, styles.tableCell)
		if embedded {
			if err := f.SetRowHeight(quotationSheetName, row, imageRowHeight); err != nil {
				return nil, err
			}
		}
		if v, err := strconv.ParseFloat(p.LineTotal, 64); err == nil {
			total += v
			totalKnown = true
		}
		row++
	}

	// Totals.
	setCell(f, quotationSheetName, 1, row, "合计", styles.tableHeader)
	mergeAcross(f, quotationSheetName, row, 1, 7)
	if totalKnown {
		setCell(f, quotationSheetName, 8, row, fmt.Sprintf("%.2f", total), styles.tableHeader)
	} else {
		setCell(f, quotationSheetName, 8, row, "", styles.tableHeader)
	}
	setCell(f, quotationSheetName, 9, row, "", styles.tableHeader)
	row++

	// Boilerplate terms.
	terms := []struct{ label, value string }{
		{"付款方式", doc.PaymentTerms},
		{"交货日期", doc.DeliveryDate},
		{"验收标准", doc.AcceptanceStandard},
		{"报价有效期", doc.Validity},
		{"备注", doc.Notice},
	}
	for _, t := range terms {
		setCell(f, quotationSheetName, 1, row, t.label+"："+t.value, styles.boilerplate)
		mergeAcross(f, quotationSheetName, row, 1, estimate.ProductionColumnCount)
		row++
	}

	// Signature row.
	setCell(f, quotationSheetName, 1, row, "甲方确认（盖章）：", styles.label)
	mergeAcross(f, quotationSheetName, row, 1, 4)
	setCell(f, quotationSheetName, 5, row, "乙方（盖章）：", styles.label)
	mergeAcross(f, quotationSheetName, row, 5, 7)
	setCell(f, quotationSheetName, 8, row, "日期："+doc.SignatureDate, styles.value)
	mergeAcross(f, quotationSheetName, row, 8, estimate.ProductionColumnCount)
	if err := f.SetRowHeight(quotationSheetName, row, 28); err != nil {
		return nil, err
	}

	for i, w := range quotationWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(quotationSheetName, col, col, w); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
