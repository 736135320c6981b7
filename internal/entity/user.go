package entity

import "time"

type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	CreatedAt *time.Time `json:"created_at"` // nil when the stored value could not be parsed
}

// UserForm is the request body of create and update. Both fields are
// pointers so a missing key can be told apart from an empty string.
type UserForm struct {
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

/*
SQLite schema (see migrations for mysql and postgres):

CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
*/
