package board

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/hrygo/personalboard/store"
)

// fakeStore is an in-memory Store. Histories are ordered like the real
// drivers: created_ts DESC, id DESC.
type fakeStore struct {
	mu        sync.Mutex
	members   []*store.Member
	histories []*store.History
	nextID    int64
	clock     int64

	listMembersErr     error
	createHistoriesErr error
}

func newFakeStore(members ...*store.Member) *fakeStore {
	return &fakeStore{members: members, clock: 1_700_000_000}
}

func (f *fakeStore) CreateMember(_ context.Context, create *store.Member) (*store.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock++
	create.CreatedTs, create.UpdatedTs = f.clock, f.clock
	f.members = append(f.members, create)
	return create, nil
}

func (f *fakeStore) ListMembers(_ context.Context, find *store.FindMember) ([]*store.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listMembersErr != nil {
		return nil, f.listMembersErr
	}
	list := make([]*store.Member, 0)
	for _, m := range f.members {
		if find.ID != nil && m.ID != *find.ID {
			continue
		}
		if find.UserID != nil && m.UserID != *find.UserID {
			continue
		}
		list = append(list, m)
	}
	return list, nil
}

func (f *fakeStore) GetMember(ctx context.Context, find *store.FindMember) (*store.Member, error) {
	list, err := f.ListMembers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (f *fakeStore) UpdateMember(_ context.Context, update *store.UpdateMember) (*store.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.ID != update.ID {
			continue
		}
		if update.Name != nil {
			m.Name = *update.Name
		}
		if update.Description != nil {
			m.Description = *update.Description
		}
		if update.Background != nil {
			m.Background = *update.Background
		}
		if update.Role != nil {
			m.Role = *update.Role
		}
		if update.Picture != nil {
			m.Picture = update.Picture
		}
		if update.UpdatedTs != nil {
			m.UpdatedTs = *update.UpdatedTs
		}
		return m, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) DeleteMember(_ context.Context, delete *store.DeleteMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.members {
		if m.ID == delete.ID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) CreateHistories(_ context.Context, creates []*store.History) ([]*store.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createHistoriesErr != nil {
		return nil, f.createHistoriesErr
	}
	if len(creates) == 0 {
		return nil, errors.New("no history to create")
	}
	f.clock++
	for _, h := range creates {
		f.nextID++
		h.ID = f.nextID
		h.CreatedTs = f.clock
		f.histories = append(f.histories, h)
	}
	return creates, nil
}

func (f *fakeStore) ListHistories(_ context.Context, find *store.FindHistory) ([]*store.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]*store.History, 0)
	for _, h := range f.histories {
		if find.UserID != nil && h.UserID != *find.UserID {
			continue
		}
		if find.MemberID != nil && h.MemberID != *find.MemberID {
			continue
		}
		if find.BatchUID != nil && h.BatchUID != *find.BatchUID {
			continue
		}
		list = append(list, h)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedTs != list[j].CreatedTs {
			return list[i].CreatedTs > list[j].CreatedTs
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (f *fakeStore) historyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.histories)
}
