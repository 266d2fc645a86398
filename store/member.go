package store

// Member is a board member persona owned by exactly one user.
type Member struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Background  string
	// Role holds every role the member plays, in display order.
	Role    []string
	Picture *string

	CreatedTs int64
	UpdatedTs int64
}

type FindMember struct {
	ID     *string
	UserID *string
}

type UpdateMember struct {
	ID          string
	Name        *string
	Description *string
	Background  *string
	Role        *[]string
	Picture     *string
	UpdatedTs   *int64
}

// IsEmpty reports whether the update changes no persona field.
func (u *UpdateMember) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Background == nil && u.Role == nil && u.Picture == nil
}

type DeleteMember struct {
	ID string
}
