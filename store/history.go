package store

// History is one member's answer to one user input.
// Rows are append-only: they are never updated or deleted.
type History struct {
	ID int64
	// UID is the public identifier of the row.
	UID string
	// BatchUID is shared by every row written for the same submission.
	BatchUID     string
	UserID       string
	MemberID     string
	UserInput    string
	MemberOutput string
	CreatedTs    int64
}

type FindHistory struct {
	UserID   *string
	MemberID *string
	BatchUID *string
	Limit    *int
}
