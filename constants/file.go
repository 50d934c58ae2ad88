package constants

import "strings"

// SpreadsheetExtensions holds the workbook formats accepted for structured
// extraction.
var SpreadsheetExtensions = map[string]struct{}{
	"xlsx": {},
}

// ModelExtensions holds the CAD model formats accepted for preview
// rendering.
var ModelExtensions = map[string]struct{}{
	"step": {},
	"stp":  {},
	"igs":  {},
	"iges": {},
	"stl":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsSpreadsheet reports whether ext names an accepted workbook format.
func IsSpreadsheet(ext string) bool {
	_, ok := SpreadsheetExtensions[NormalizeExt(ext)]
	return ok
}

// IsModel reports whether ext names an accepted CAD model format.
func IsModel(ext string) bool {
	_, ok := ModelExtensions[NormalizeExt(ext)]
	return ok
}
