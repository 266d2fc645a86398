package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/personalboard/internal/profile"
)

// ErrNotFound is returned when a lookup, update or delete matches no row.
var ErrNotFound = errors.New("not found")

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateMember(ctx context.Context, create *Member) (*Member, error) {
	return s.driver.CreateMember(ctx, create)
}

func (s *Store) ListMembers(ctx context.Context, find *FindMember) ([]*Member, error) {
	return s.driver.ListMembers(ctx, find)
}

// GetMember returns the member matching find, or ErrNotFound.
func (s *Store) GetMember(ctx context.Context, find *FindMember) (*Member, error) {
	list, err := s.ListMembers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

func (s *Store) UpdateMember(ctx context.Context, update *UpdateMember) (*Member, error) {
	return s.driver.UpdateMember(ctx, update)
}

func (s *Store) DeleteMember(ctx context.Context, delete *DeleteMember) error {
	return s.driver.DeleteMember(ctx, delete)
}

func (s *Store) CreateHistories(ctx context.Context, creates []*History) ([]*History, error) {
	if len(creates) == 0 {
		return nil, errors.New("no history to create")
	}
	return s.driver.CreateHistories(ctx, creates)
}

func (s *Store) ListHistories(ctx context.Context, find *FindHistory) ([]*History, error) {
	return s.driver.ListHistories(ctx, find)
}
