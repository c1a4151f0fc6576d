// Package renderer formats account and market data as markdown for the
// terminal.
package renderer

import (
	"fmt"
	"strings"
)

// builder is a small helper around strings.Builder for table-heavy reports.
type builder struct {
	*strings.Builder
}

func newBuilder() *builder { return &builder{Builder: &strings.Builder{}} }

// Printf formats according to a format specifier and writes to the report.
func (b *builder) Printf(format string, args ...any) {
	fmt.Fprintf(b, format, args...)
}
