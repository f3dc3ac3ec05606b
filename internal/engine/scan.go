package engine

import (
	"database/sql"
	"fmt"

	"github.com/roach88/qparam/internal/ir"
)

// scanRow reads the current row into an object keyed by column name.
// NULL columns become ir.IRNull.
func scanRow(rows *sql.Rows) (ir.IRObject, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make(ir.IRObject, len(columns))
	for i, colName := range columns {
		v, err := sqlToIRValue(values[i])
		if err != nil {
			return nil, fmt.Errorf("convert column %s: %w", colName, err)
		}
		row[colName] = v
	}
	return row, nil
}

// sqlToIRValue converts a database/sql value to an ir.IRValue.
func sqlToIRValue(v any) (ir.IRValue, error) {
	if v == nil {
		return ir.IRNull{}, nil
	}

	switch val := v.(type) {
	case int64:
		return ir.IRInt(val), nil
	case int:
		return ir.IRInt(int64(val)), nil
	case float64:
		// The schema has no REAL columns; a float here means a schema change.
		return nil, fmt.Errorf("float64 values are not supported: %v - use INTEGER or TEXT instead", val)
	case string:
		return ir.IRString(val), nil
	case []byte:
		return ir.IRString(string(val)), nil
	case bool:
		return ir.IRBool(val), nil
	default:
		return nil, fmt.Errorf("unsupported SQL type: %T", v)
	}
}
