// Package frame provides a small column-oriented table used by the feature
// pipelines. Cells hold float64, string or time.Time values; a nil cell is a
// null.
package frame

import (
	"fmt"
)

type Table struct {
	names   []string
	columns map[string][]any
	length  int
}

func New() *Table {
	return &Table{
		columns: map[string][]any{},
	}
}

// AddColumn appends a column after all existing ones. The first column added
// fixes the row count of the table.
func (t *Table) AddColumn(name string, values []any) error {
	if _, exists := t.columns[name]; exists {
		return fmt.Errorf("column %s already exists", name)
	}

	if len(t.names) > 0 && len(values) != t.length {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), t.length)
	}

	t.names = append(t.names, name)
	t.columns[name] = values
	t.length = len(values)

	return nil
}

func (t *Table) DropColumn(name string) error {
	if _, exists := t.columns[name]; !exists {
		return fmt.Errorf("column %s does not exist", name)
	}

	delete(t.columns, name)
	for i, columnName := range t.names {
		if columnName == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}

	return nil
}

// Slice returns a new table holding rows [from, to) of every column.
func (t *Table) Slice(from int, to int) (*Table, error) {
	if from < 0 || to > t.length || from > to {
		return nil, fmt.Errorf("slice [%d, %d) out of range for %d rows", from, to, t.length)
	}

	sliced := New()
	for _, name := range t.names {
		values := make([]any, to-from)
		copy(values, t.columns[name][from:to])

		if err := sliced.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	sliced.length = to - from

	return sliced, nil
}

func (t *Table) HasColumn(name string) bool {
	_, exists := t.columns[name]
	return exists
}

// Columns returns the column names in their insertion order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

func (t *Table) Len() int {
	return t.length
}

func (t *Table) Column(name string) ([]any, bool) {
	values, exists := t.columns[name]
	return values, exists
}

// Float returns the cell as a float64. The bool is false for a missing
// column, a null cell or a non-numeric cell.
func (t *Table) Float(name string, row int) (float64, bool) {
	values, exists := t.columns[name]
	if !exists || row < 0 || row >= len(values) {
		return 0, false
	}

	value, ok := values[row].(float64)
	return value, ok
}

func (t *Table) String(name string, row int) (string, bool) {
	values, exists := t.columns[name]
	if !exists || row < 0 || row >= len(values) {
		return "", false
	}

	value, ok := values[row].(string)
	return value, ok
}

// CountNulls reports how many cells of a column are null. A missing column
// counts every row as null.
func (t *Table) CountNulls(name string) int {
	values, exists := t.columns[name]
	if !exists {
		return t.length
	}

	nulls := 0
	for _, value := range values {
		if value == nil {
			nulls++
		}
	}

	return nulls
}

// UniqueStrings returns the distinct string values of a column in order of
// first occurrence, skipping nulls and empty strings.
func (t *Table) UniqueStrings(name string) []string {
	values, exists := t.columns[name]
	if !exists {
		return nil
	}

	present := map[string]bool{}
	var unique []string

	for _, value := range values {
		str, ok := value.(string)
		if !ok || str == "" {
			continue
		}

		if !present[str] {
			present[str] = true
			unique = append(unique, str)
		}
	}

	return unique
}
