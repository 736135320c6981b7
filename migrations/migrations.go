package migrations

import (
	"database/sql"
	"fmt"
	"time"

	"user-service/internal/repository"
)

var usersTable = map[string]string{
	repository.DriverSQLite: `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`,
	repository.DriverMySQL: `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`,
	repository.DriverPostgres: `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			created_at TIMESTAMP(0) NOT NULL DEFAULT (now() AT TIME ZONE 'utc')
		);
	`,
}

// AutoMigrateUsers creates the users table if it does not exist.
func AutoMigrateUsers(retries int, driver string, db *sql.DB) error {
	query, ok := usersTable[driver]
	if !ok {
		return fmt.Errorf("no users migration for driver %q", driver)
	}

	_, err := db.Exec(query)
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(1 * time.Second)
		_, err = db.Exec(query)
	}
	if err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}

	return nil
}
