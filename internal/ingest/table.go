package ingest

import (
	"fmt"
	"strings"
)

// table is a header-indexed view over tabular rows, shared by the CSV
// and XLSX loaders.
type table struct {
	index map[string]int
	rows  [][]string
}

func newTable(header []string, rows [][]string) *table {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		index[key] = i
	}
	return &table{index: index, rows: rows}
}

// has reports whether any of the given column names exists in the header.
func (t *table) has(names ...string) bool {
	for _, name := range names {
		if _, ok := t.index[strings.ToLower(name)]; ok {
			return true
		}
	}
	return false
}

// get returns the trimmed cell for the first matching column name, or ""
// when no listed column exists or the row is short.
func (t *table) get(row []string, names ...string) string {
	for _, name := range names {
		pos, ok := t.index[strings.ToLower(name)]
		if !ok || pos >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[pos]); v != "" {
			return v
		}
	}
	return ""
}

// requireColumns verifies the mandatory headers are present.
func (t *table) requireColumns(groups ...[]string) error {
	var missing []string
	for _, group := range groups {
		if !t.has(group...) {
			missing = append(missing, group[0])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required headers: %s", strings.Join(missing, ", "))
	}
	return nil
}
