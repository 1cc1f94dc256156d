package row

import "strings"

// Schema returns r's table definition in the shape a CREATE TABLE body
// expects:
//
//	bands (name TEXT,genre TEXT,formed INTEGER,PRIMARY KEY (name))
//
// Columns appear in field order. The key clause lists the first field plus
// every field flagged primary, also in field order, without duplicates.
func Schema(r Row) string {
	var b strings.Builder
	b.WriteString(r.Table())
	b.WriteString(" (")
	for i, f := range r.Fields() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Key())
		b.WriteByte(' ')
		b.WriteString(string(f.WireType()))
	}
	b.WriteString(",PRIMARY KEY (")
	for i, f := range KeyFields(r) {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Key())
	}
	b.WriteString("))")
	return b.String()
}
