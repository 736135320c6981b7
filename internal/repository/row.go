package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"user-service/internal/entity"
)

// CreatedAtLayout is the layout created_at is stored in.
const CreatedAtLayout = "2006-01-02 15:04:05"

// Row is one result row addressed by column name.
type Row map[string]any

func scanRow(rows *sql.Rows) (Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(Row, len(columns))
	for i, column := range columns {
		row[strings.ToLower(column)] = values[i]
	}
	return row, nil
}

// SerializeUser maps a users row to a User. A created_at value that is
// missing or not in CreatedAtLayout becomes nil instead of an error.
func SerializeUser(row Row) (entity.User, error) {
	id, err := int64Value(row["id"])
	if err != nil {
		return entity.User{}, fmt.Errorf("failed to read user id: %w", err)
	}

	return entity.User{
		ID:        id,
		Email:     stringValue(row["email"]),
		Phone:     stringValue(row["phone"]),
		CreatedAt: parseCreatedAt(row["created_at"]),
	}, nil
}

func parseCreatedAt(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string, []byte:
		parsed, err := time.Parse(CreatedAtLayout, stringValue(t))
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func int64Value(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
