package test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/personalboard/store"
)

func newTestMember(userID, name string, role ...string) *store.Member {
	return &store.Member{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: name + " is direct and warm",
		Background:  name + " spent twenty years in startups",
		Role:        role,
	}
}

func TestMemberStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	member, err := ts.CreateMember(ctx, newTestMember("u1", "Coach", "mentor", "coach"))
	require.NoError(t, err)
	require.NotZero(t, member.CreatedTs)
	require.Equal(t, member.CreatedTs, member.UpdatedTs)

	list, err := ts.ListMembers(ctx, &store.FindMember{UserID: &member.UserID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Coach", list[0].Name)
	require.Equal(t, []string{"mentor", "coach"}, list[0].Role)
	require.Nil(t, list[0].Picture)

	name := "Head Coach"
	picture := "https://example.com/coach.png"
	updated, err := ts.UpdateMember(ctx, &store.UpdateMember{
		ID:      member.ID,
		Name:    &name,
		Picture: &picture,
	})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, member.Description, updated.Description)
	require.Equal(t, []string{"mentor", "coach"}, updated.Role)
	require.NotNil(t, updated.Picture)
	require.Equal(t, picture, *updated.Picture)

	require.NoError(t, ts.DeleteMember(ctx, &store.DeleteMember{ID: member.ID}))
	list, err = ts.ListMembers(ctx, &store.FindMember{UserID: &member.UserID})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestMemberStoreEmptyRole(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	member, err := ts.CreateMember(ctx, newTestMember("u1", "Critic"))
	require.NoError(t, err)

	got, err := ts.GetMember(ctx, &store.FindMember{ID: &member.ID})
	require.NoError(t, err)
	require.NotNil(t, got.Role)
	require.Empty(t, got.Role)
}

func TestMemberStoreScopedByUser(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	_, err := ts.CreateMember(ctx, newTestMember("u1", "Coach"))
	require.NoError(t, err)
	_, err = ts.CreateMember(ctx, newTestMember("u1", "Critic"))
	require.NoError(t, err)
	_, err = ts.CreateMember(ctx, newTestMember("u2", "Stoic"))
	require.NoError(t, err)

	u1, u2, u3 := "u1", "u2", "u3"
	list, err := ts.ListMembers(ctx, &store.FindMember{UserID: &u1})
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = ts.ListMembers(ctx, &store.FindMember{UserID: &u2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Stoic", list[0].Name)

	list, err = ts.ListMembers(ctx, &store.FindMember{UserID: &u3})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestMemberStoreNotFound(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	missing := uuid.NewString()

	_, err := ts.GetMember(ctx, &store.FindMember{ID: &missing})
	require.ErrorIs(t, err, store.ErrNotFound)

	name := "Ghost"
	_, err = ts.UpdateMember(ctx, &store.UpdateMember{ID: missing, Name: &name})
	require.ErrorIs(t, err, store.ErrNotFound)

	err = ts.DeleteMember(ctx, &store.DeleteMember{ID: missing})
	require.ErrorIs(t, err, store.ErrNotFound)
}
