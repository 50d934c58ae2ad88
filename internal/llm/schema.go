package llm

// BuildProductionSheetSchema returns a JSON-Schema (draft 2020-12 subset) for
// the row-oriented production order layout, as a generic map. Variant-level
// invariants (9 cells per data row, title needs a merge span) are enforced by
// the typed validation after decoding.
func BuildProductionSheetSchema() map[string]any {
	cell := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"col":   map[string]any{"type": "integer", "minimum": 1},
			"value": map[string]any{"type": "string"},
			"style": map[string]any{"type": "string"},
		},
		"required": []string{"col", "value"},
	}
	return map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": map[string]any{
					"type": "string",
					"enum": []string{"title", "header", "tableHeader", "data"},
				},
				"text":      map[string]any{"type": "string"},
				"mergeCols": map[string]any{"type": "integer", "minimum": 1},
				"height":    map[string]any{"type": "number", "minimum": 0},
				"cells":     map[string]any{"type": "array", "items": cell},
				"headers":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []string{"type"},
		},
	}
}

// BuildQuotationSchema returns the JSON-Schema for the nested quotation
// record.
func BuildQuotationSchema() map[string]any {
	company := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":    map[string]any{"type": "string"},
			"contact": map[string]any{"type": "string"},
			"tel":     map[string]any{"type": "string"},
			"fax":     map[string]any{"type": "string"},
			"email":   map[string]any{"type": "string"},
			"address": map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}
	line := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"seq":              map[string]any{"type": "integer", "minimum": 1},
			"image":            map[string]any{"type": "string", "minLength": 1},
			"partName":         map[string]any{"type": "string"},
			"surfaceTreatment": map[string]any{"type": "string"},
			"material":         map[string]any{"type": "string"},
			"quantity":         map[string]any{"type": "string"},
			"unitPrice":        map[string]any{"type": "string"},
			"lineTotal":        map[string]any{"type": "string"},
			"notes":            map[string]any{"type": "string"},
		},
		"required": []string{"seq", "image", "partName", "material", "quantity"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quoteNumber":        map[string]any{"type": "string", "minLength": 1},
			"partyA":             company,
			"partyB":             company,
			"products":           map[string]any{"type": "array", "items": line},
			"paymentTerms":       map[string]any{"type": "string"},
			"deliveryDate":       map[string]any{"type": "string"},
			"acceptanceStandard": map[string]any{"type": "string"},
			"validity":           map[string]any{"type": "string"},
			"notice":             map[string]any{"type": "string"},
			"signatureDate":      map[string]any{"type": "string"},
		},
		"required": []string{"quoteNumber", "partyA", "partyB", "products"},
	}
}
