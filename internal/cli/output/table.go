package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Tabler is implemented by values that lay themselves out as a table.
type Tabler interface {
	Table(wide bool) *Table
}

// TableFormatter formats data as aligned columns.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format renders data as a table. It accepts a Table, a Tabler, a slice of
// structs, a map or a single struct; anything else falls back to JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	var t *Table
	switch v := data.(type) {
	case *Table:
		t = v
	case Table:
		t = &v
	case Tabler:
		t = v.Table(f.Wide)
	default:
		var err error
		if t, err = toTable(data, f.Wide); err != nil {
			return (&JSONFormatter{}).Format(w, data)
		}
	}
	return t.RenderWithOptions(w, f.NoHeaders)
}

func toTable(data any, wide bool) (*Table, error) {
	v := reflect.Indirect(reflect.ValueOf(data))

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceToTable(v, wide)
	case reflect.Map:
		return mapToTable(v), nil
	case reflect.Struct:
		return structToTable(v, wide), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", v.Kind())
	}
}

// column is one struct field shown in a table.
type column struct {
	index  int
	header string
}

// columns lists the fields of t that appear in a table. The header comes
// from the table tag, then the json name. A table tag of "-" hides the
// field and ",wide" limits it to wide output.
func columns(t reflect.Type, wide bool) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("table"), ",")
		if name == "-" {
			continue
		}
		if opts == "wide" && !wide {
			continue
		}
		if name == "" {
			name = jsonName(field)
		}
		if name == "" {
			continue
		}
		cols = append(cols, column{index: i, header: strings.ToUpper(name)})
	}
	return cols
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return toSnakeCase(field.Name)
	}
	return name
}

func sliceToTable(v reflect.Value, wide bool) (*Table, error) {
	elem := v.Type().Elem()
	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		t := &Table{Headers: []string{"VALUE"}}
		for i := 0; i < v.Len(); i++ {
			t.AddRow(formatValue(v.Index(i)))
		}
		return t, nil
	}

	cols := columns(elem, wide)
	t := &Table{}
	for _, c := range cols {
		t.Headers = append(t.Headers, c.header)
	}
	for i := 0; i < v.Len(); i++ {
		item := reflect.Indirect(v.Index(i))
		row := make([]string, len(cols))
		for j, c := range cols {
			if item.IsValid() {
				row[j] = formatValue(item.Field(c.index))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// mapToTable lays a map out as sorted key/value rows.
func mapToTable(v reflect.Value) *Table {
	t := &Table{Headers: []string{"KEY", "VALUE"}}
	iter := v.MapRange()
	for iter.Next() {
		t.AddRow(formatValue(iter.Key()), formatValue(iter.Value()))
	}
	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i][0] < t.Rows[j][0] })
	return t
}

// structToTable lays a single struct out as field/value rows.
func structToTable(v reflect.Value, wide bool) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, c := range columns(v.Type(), wide) {
		t.AddRow(strings.ToLower(c.header), formatValue(v.Field(c.index)))
	}
	return t
}

var timeType = reflect.TypeOf(time.Time{})

func formatValue(v reflect.Value) string {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return ""
	}

	if v.Type() == timeType {
		ts := v.Interface().(time.Time)
		if ts.IsZero() {
			return "-"
		}
		return ts.Local().Format("2006-01-02 15:04:05")
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		if v.Type().Elem().Kind() == reflect.String {
			parts := make([]string, v.Len())
			for i := range parts {
				parts[i] = v.Index(i).String()
			}
			return strings.Join(parts, ",")
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		return fmt.Sprint(v.Interface())
	}
}

// toSnakeCase converts CamelCase to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// Table is tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render writes the table with headers.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions writes the table, optionally without the header row.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders replaces the headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
