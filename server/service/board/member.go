package board

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	boarderrors "github.com/hrygo/personalboard/server/internal/errors"
	"github.com/hrygo/personalboard/store"
)

func (s *service) CreateMember(ctx context.Context, create *CreateMemberRequest) (*store.Member, error) {
	if create == nil || strings.TrimSpace(create.UserID) == "" {
		return nil, boarderrors.ValidationFailed("user_id is required")
	}
	if strings.TrimSpace(create.Name) == "" {
		return nil, boarderrors.ValidationFailed("name is required")
	}

	role := create.Role
	if role == nil {
		role = []string{}
	}
	member, err := s.store.CreateMember(ctx, &store.Member{
		ID:          uuid.NewString(),
		UserID:      create.UserID,
		Name:        create.Name,
		Description: create.Description,
		Background:  create.Background,
		Role:        role,
		Picture:     create.Picture,
	})
	if err != nil {
		return nil, boarderrors.PersistenceFailed("failed to create board member", err)
	}
	return member, nil
}

func (s *service) GetMember(ctx context.Context, id string) (*store.Member, error) {
	member, err := s.store.GetMember(ctx, &store.FindMember{ID: &id})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, boarderrors.NotFound("board member not found").WithContext("member_id", id)
		}
		return nil, boarderrors.PersonaLookupFailed("failed to load board member", err)
	}
	return member, nil
}

func (s *service) ListMembers(ctx context.Context, userID string) ([]*store.Member, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, boarderrors.ValidationFailed("user_id is required")
	}

	list, err := s.store.ListMembers(ctx, &store.FindMember{UserID: &userID})
	if err != nil {
		return nil, boarderrors.PersonaLookupFailed("failed to list board members", err)
	}
	if list == nil {
		list = []*store.Member{}
	}
	return list, nil
}

func (s *service) UpdateMember(ctx context.Context, id string, update *UpdateMemberRequest) (*store.Member, error) {
	if update == nil {
		return nil, boarderrors.ValidationFailed("no fields to update")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, boarderrors.ValidationFailed("name cannot be empty")
	}

	now := time.Now().Unix()
	storeUpdate := &store.UpdateMember{
		ID:          id,
		Name:        update.Name,
		Description: update.Description,
		Background:  update.Background,
		Role:        update.Role,
		Picture:     update.Picture,
		UpdatedTs:   &now,
	}
	if storeUpdate.IsEmpty() {
		return nil, boarderrors.ValidationFailed("no fields to update")
	}

	member, err := s.store.UpdateMember(ctx, storeUpdate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, boarderrors.NotFound("board member not found").WithContext("member_id", id)
		}
		return nil, boarderrors.PersistenceFailed("failed to update board member", err)
	}
	return member, nil
}

func (s *service) DeleteMember(ctx context.Context, id string) error {
	if err := s.store.DeleteMember(ctx, &store.DeleteMember{ID: id}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return boarderrors.NotFound("board member not found").WithContext("member_id", id)
		}
		return boarderrors.PersistenceFailed("failed to delete board member", err)
	}
	return nil
}
