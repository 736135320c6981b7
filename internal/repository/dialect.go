package repository

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
)

// dialect captures the differences between the supported drivers that
// matter to the users queries.
type dialect struct {
	driver string
	// returning reports whether INSERT/UPDATE/DELETE ... RETURNING is available.
	returning bool
	// dollarParams rewrites ? placeholders to $1, $2, ...
	dollarParams bool
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return dialect{driver: driver, returning: true}, nil
	case DriverPostgres:
		return dialect{driver: driver, returning: true, dollarParams: true}, nil
	case DriverMySQL:
		return dialect{driver: driver}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d dialect) rebind(query string) string {
	if !d.dollarParams {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
