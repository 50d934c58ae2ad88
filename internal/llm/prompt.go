package llm

import (
	"fmt"
	"strings"
)

// Names of the two structure literals the model must emit. The extractor
// locates them verbatim by name, so they must stay stable.
const (
	StructProductionSheet = "productionSheet"
	StructQuotation       = "quotationData"
)

// BuildExtractionPrompt composes the fixed two-structure instruction template
// with either a normalized transcript or an attached page image.
func BuildExtractionPrompt(transcript string, d Defaults, imageAttached bool) string {
	var b strings.Builder

	b.WriteString("You are an engineering sales assistant. ")
	if imageAttached {
		b.WriteString("The attached image is a page of a machining specification sheet. ")
	} else {
		b.WriteString("Below is a cell-by-cell transcript of a machining specification sheet. ")
	}
	b.WriteString("Extract every part row and produce EXACTLY two JavaScript-style assignments, nothing else:\n\n")

	fmt.Fprintf(&b, "%s = [ ... ];\n%s = { ... };\n\n", StructProductionSheet, StructQuotation)

	b.WriteString(strings.Join([]string{
		StructProductionSheet + " is an array of row objects rendering a production order sheet, in order:",
		`- { "type": "title", "text": <sheet title>, "mergeCols": 9, "height": 32 }`,
		`- { "type": "header", "height": 20, "cells": [ { "col": <1-9>, "value": <text>, "style": "label"|"value" }, ... ] } for customer/order detail rows (at least one cell each)`,
		`- { "type": "tableHeader", "height": 22, "headers": ["序号","图片","零件号","零件名称","规格","材质","数量","工艺","表面处理"] }`,
		`- { "type": "data", "height": 60, "cells": [ { "col": 1, "value": <序号> }, { "col": 2, "value": <零件号, as image placeholder> }, { "col": 3, "value": <零件号> }, { "col": 4, "value": <零件名称> }, { "col": 5, "value": <规格> }, { "col": 6, "value": <材质> }, { "col": 7, "value": <数量> }, { "col": 8, "value": <工艺> }, { "col": 9, "value": <表面处理> } ] } (exactly 9 cells, one per column)`,
	}, "\n"))
	b.WriteString("\n\n")

	b.WriteString(strings.Join([]string{
		StructQuotation + " is one object:",
		`{ "quoteNumber": <string>, "partyA": <company>, "partyB": <company>, "products": [ <line>, ... ], "paymentTerms": <string>, "deliveryDate": <string>, "acceptanceStandard": <string>, "validity": <string>, "notice": <string>, "signatureDate": <string> }`,
		`<company> = { "name", "contact", "tel", "fax", "email", "address" } (all strings, "" when unknown)`,
		`<line> = { "seq": <int>, "image": <零件号>, "partName", "surfaceTreatment", "material", "quantity", "unitPrice", "lineTotal", "notes" }`,
	}, "\n"))
	b.WriteString("\n\nRules:\n")

	rules := []string{
		"Copy 材质 (material), 数量 (quantity) and 表面处理 (surface treatment) exactly as written; never abbreviate or omit them.",
		"Party A (甲方) is the customer from the sheet; party B (乙方) is the supplier. Unless the sheet says otherwise, use these supplier defaults verbatim:",
		"  name: " + d.SupplierName,
		"  contact: " + d.SupplierContact,
		"  tel: " + d.SupplierTel,
		"  email: " + d.SupplierEmail,
		"  address: " + d.SupplierAddress,
		"Unless the sheet states them, keep these defaults verbatim: paymentTerms: " + d.PaymentTerms +
			" | acceptanceStandard: " + d.AcceptanceStandard + " | validity: " + d.Validity +
			" | notice: " + d.Notice,
		"Set the \"image\" field and data column 2 to the part number (零件号); images are attached later by filename.",
		"Leave unitPrice and lineTotal as \"\" when the sheet has no pricing.",
		"Use double quotes. No comments, no trailing commas, no code fences, no text before or after the two assignments.",
	}
	for _, r := range rules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}

	if !imageAttached {
		b.WriteString("\nSpreadsheet transcript:\n")
		b.WriteString(transcript)
	}
	return b.String()
}
