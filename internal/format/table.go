package format

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// leadColumns come first when present; anything else follows alphabetically.
var leadColumns = []string{"id", "name", "speed", "color", "created_at"}

// WriteTable renders the data of an envelope for humans: a list of objects
// becomes one row per object, a single object becomes key/value rows.
func WriteTable(w io.Writer, v any) error {
	x, err := toGeneric(v)
	if err != nil {
		return err
	}
	if env, ok := x.(map[string]any); ok {
		if data, ok := env["data"]; ok {
			x = data
		}
	}

	t := table.New().Border(lipgloss.NormalBorder())
	switch d := x.(type) {
	case []any:
		cols := columnsOf(d)
		if len(cols) == 0 {
			t = t.Headers("value")
			for _, it := range d {
				t = t.Row(cell(it))
			}
			break
		}
		t = t.Headers(cols...)
		for _, it := range d {
			obj, _ := it.(map[string]any)
			row := make([]string, len(cols))
			for i, c := range cols {
				row[i] = cell(obj[c])
			}
			t = t.Row(row...)
		}
	case map[string]any:
		t = t.Headers("field", "value")
		for _, k := range orderedKeys(d) {
			t = t.Row(k, cell(d[k]))
		}
	default:
		_, err := fmt.Fprintln(w, cell(d))
		return err
	}
	_, err = fmt.Fprintln(w, t.String())
	return err
}

func columnsOf(rows []any) []string {
	seen := map[string]bool{}
	for _, it := range rows {
		if obj, ok := it.(map[string]any); ok {
			for k := range obj {
				seen[k] = true
			}
		}
	}
	merged := make(map[string]any, len(seen))
	for k := range seen {
		merged[k] = nil
	}
	return orderedKeys(merged)
}

func orderedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for _, k := range leadColumns {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	var rest []string
	for k := range m {
		lead := false
		for _, l := range leadColumns {
			if k == l {
				lead = true
				break
			}
		}
		if !lead {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
