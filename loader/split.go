package loader

import (
	"github.com/pkg/errors"

	"github.com/movietools/jsonl2sqlite/database"
)

// childRows holds the decomposed nested collections of one record, keyed by
// child table name.
type childRows map[string][][]any

// splitRecord flattens one record into a movies row (in the column order of
// database.MovieColumns) plus the rows of each child table. Missing or null
// collections simply produce no rows.
func splitRecord(rec record, cols []database.ScalarColumn) ([]any, childRows, error) {
	id, ok := rec.movieID()
	if !ok {
		return nil, nil, errors.Wrap(ErrMalformedRecord, "record has no usable id")
	}

	row := make([]any, 0, len(cols))
	for idx := range cols {
		col := &cols[idx]
		if col.Parent != "" {
			row = append(row, normalize(rec.sub(col.Parent)[col.Source]))
		} else {
			row = append(row, normalize(rec[col.Source]))
		}
	}

	children := make(childRows, len(database.MovieChildTables))
	for idx := range database.MovieChildTables {
		child := &database.MovieChildTables[idx]
		elements := rec.list(child.Field, child.Nested)
		if len(elements) == 0 {
			continue
		}
		rows := make([][]any, 0, len(elements))
		for _, element := range elements {
			crow := make([]any, 0, len(child.Columns)+1)
			crow = append(crow, id)
			obj, _ := element.(map[string]any)
			for idxcol := range child.Columns {
				if child.Columns[idxcol].Source == "" {
					crow = append(crow, normalize(element))
				} else {
					crow = append(crow, normalize(obj[child.Columns[idxcol].Source]))
				}
			}
			rows = append(rows, crow)
		}
		children[child.Name] = rows
	}
	return row, children, nil
}
