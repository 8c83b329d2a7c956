package model

// Course is one entry of the catalog. The catalog is read-only for the web
// application; records come from cmd/seed or from an external import.
//
// CourseID is a short code such as "101". It stays a string because catalog
// codes are not guaranteed to be numeric.
type Course struct {
	CourseID    string `json:"course_id"   bson:"course_id"   db:"course_id"`
	Title       string `json:"title"       bson:"title"       db:"title"`
	Description string `json:"description" bson:"description" db:"description"`
	Credits     int    `json:"credits"     bson:"credits"     db:"credits"`
	Term        string `json:"term"        bson:"term"        db:"term"`
}

// Enrollment links one user to one course. At most one record exists per
// (UserID, CourseID) pair; both stores enforce this with a unique index.
type Enrollment struct {
	UserID   int64  `json:"user_id"   bson:"user_id"   db:"user_id"`
	CourseID string `json:"course_id" bson:"course_id" db:"course_id"`
}

// EnrolledCourse is a row of a user's enrollment listing: the user joined
// with one of their enrollments and the course it points at.
type EnrolledCourse struct {
	UserID int64
	Course
}
