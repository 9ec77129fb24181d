package report

import (
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newReportReader wraps r so the decoder always sees UTF-8. Genbox exports
// statements as UTF-16 with a BOM; older terminal builds write Windows-1252.
func newReportReader(r io.Reader) io.Reader {
	fallback := charmap.Windows1252.NewDecoder()
	return transform.NewReader(r, unicode.BOMOverride(fallback))
}
