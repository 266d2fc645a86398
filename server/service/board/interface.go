package board

import (
	"context"

	"github.com/hrygo/personalboard/store"
)

// Service defines the board operations exposed to the HTTP layer.
type Service interface {
	// CreateForAllMembers asks every board member of userID the same question
	// and stores all answers as one batch. Nothing is stored unless every
	// member answered.
	CreateForAllMembers(ctx context.Context, userID, userInput string) (*Submission, error)

	// CreateForMember asks a single member owned by userID.
	CreateForMember(ctx context.Context, memberID, userID, userInput string) (*Submission, error)

	// ListHistory returns the answers of memberID to userID, newest first.
	ListHistory(ctx context.Context, memberID, userID string) ([]*store.History, error)

	CreateMember(ctx context.Context, create *CreateMemberRequest) (*store.Member, error)
	GetMember(ctx context.Context, id string) (*store.Member, error)
	ListMembers(ctx context.Context, userID string) ([]*store.Member, error)
	UpdateMember(ctx context.Context, id string, update *UpdateMemberRequest) (*store.Member, error)
	DeleteMember(ctx context.Context, id string) error
}

// Submission acknowledges a stored batch of answers.
type Submission struct {
	BatchUID string
	Count    int
}

// CreateMemberRequest represents the request to create a board member.
type CreateMemberRequest struct {
	UserID      string
	Name        string
	Description string
	Background  string
	Role        []string
	Picture     *string
}

// UpdateMemberRequest represents a partial update; nil fields are left unchanged.
type UpdateMemberRequest struct {
	Name        *string
	Description *string
	Background  *string
	Role        *[]string
	Picture     *string
}

// Store is the interface for store operations needed by the board service.
type Store interface {
	CreateMember(ctx context.Context, create *store.Member) (*store.Member, error)
	ListMembers(ctx context.Context, find *store.FindMember) ([]*store.Member, error)
	GetMember(ctx context.Context, find *store.FindMember) (*store.Member, error)
	UpdateMember(ctx context.Context, update *store.UpdateMember) (*store.Member, error)
	DeleteMember(ctx context.Context, delete *store.DeleteMember) error
	CreateHistories(ctx context.Context, creates []*store.History) ([]*store.History, error)
	ListHistories(ctx context.Context, find *store.FindHistory) ([]*store.History, error)
}
