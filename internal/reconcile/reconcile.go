// Package reconcile joins extracted part records to rendered CAD preview
// images by filename prefix. The join is heuristic and best-effort by design;
// it lives behind its own package boundary so a stricter strategy could
// replace it without touching the emitters.
package reconcile

import (
	"sort"
	"strings"

	"github.com/SpaceshipxDev/creationfromzeus/internal/estimate"
)

// Resolve overwrites image placeholders in both documents with matched
// rendered filenames. Matching is case-insensitive starts-with on the part
// identifier; the first match in sorted filename order wins, so results are
// stable regardless of render completion order. A miss leaves the
// placeholder untouched. The returned report maps part identifier to the
// filename it resolved to.
func Resolve(layout *estimate.LayoutDocument, quotation *estimate.QuotationDocument, filenames []string) map[string]string {
	sorted := make([]string, len(filenames))
	copy(sorted, filenames)
	sort.Strings(sorted)

	report := make(map[string]string)

	for _, row := range layout.DataRows() {
		part := row.DataCell(estimate.ColImage)
		if part == "" {
			part = row.DataCell(estimate.ColPartNumber)
		}
		if part == "" {
			part = row.DataCell(estimate.ColPartName)
		}
		if name, ok := match(part, sorted); ok {
			row.SetDataCell(estimate.ColImage, name)
			report[part] = name
		}
	}

	for i := range quotation.Products {
		p := &quotation.Products[i]
		part := p.Image
		if part == "" {
			part = p.PartName
		}
		if name, ok := match(part, sorted); ok {
			p.Image = name
			report[part] = name
		}
	}
	return report
}

func match(part string, sorted []string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(part))
	if key == "" {
		return "", false
	}
	for _, name := range sorted {
		if strings.HasPrefix(strings.ToLower(name), key) {
			return name, true
		}
	}
	return "", false
}
