// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// User represents a registered student account.
//
// UserID is assigned by the application (not by the database), so every store
// keys users on it and carries a unique index over it and over Email.
//
// THREE SETS OF STRUCT TAGS:
//   - json: the shape returned by the REST resource under /api
//   - bson: field names inside the document database
//   - db:   column names for sqlx in the embedded SQL store
//
// PasswordHash is tagged json:"-" so it never leaves the server, even though
// the REST resource serializes whole User values.
type User struct {
	UserID       int64  `json:"user_id"    bson:"user_id"    db:"user_id"`
	FirstName    string `json:"first_name" bson:"first_name" db:"first_name"`
	LastName     string `json:"last_name"  bson:"last_name"  db:"last_name"`
	Email        string `json:"email"      bson:"email"      db:"email"`
	PasswordHash string `json:"-"          bson:"password"   db:"password"`
}

// FullName is used by the user listing page.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
