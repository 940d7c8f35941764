package warehouse

import (
	"strings"
)

// DDL renders the CREATE TABLE script for the warehouse schema. The
// script is persisted next to the data so the warehouse can be
// re-created in an external database.
func DDL(tables []Table) string {
	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("CREATE TABLE ")
		b.WriteString(t.Name)
		b.WriteString(" (\n")
		for j, c := range t.Columns {
			b.WriteString("    ")
			b.WriteString(c.Name)
			b.WriteString(" ")
			b.WriteString(c.Type)
			if c.PrimaryKey {
				b.WriteString(" PRIMARY KEY")
			}
			if j < len(t.Columns)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(");\n")
	}
	return b.String()
}
