package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/personalboard/store"
)

func (d *DB) CreateHistories(ctx context.Context, creates []*store.History) ([]*store.History, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	fields := []string{"uid", "batch_uid", "user_id", "member_id", "user_input", "member_output"}
	stmt := `INSERT INTO history (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(fields)) + `)
		RETURNING id, created_ts`
	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer prepared.Close()

	for _, create := range creates {
		if err := prepared.QueryRowContext(ctx,
			create.UID, create.BatchUID, create.UserID, create.MemberID, create.UserInput, create.MemberOutput,
		).Scan(&create.ID, &create.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to create history for member %s: %w", create.MemberID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit history transaction: %w", err)
	}
	return creates, nil
}

func (d *DB) ListHistories(ctx context.Context, find *store.FindHistory) ([]*store.History, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.MemberID; v != nil {
		where, args = append(where, "member_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.BatchUID; v != nil {
		where, args = append(where, "batch_uid = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT id, uid, batch_uid, user_id, member_id, user_input, member_output, created_ts
		FROM history
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}
	defer rows.Close()

	list := make([]*store.History, 0)
	for rows.Next() {
		h := &store.History{}
		if err := rows.Scan(&h.ID, &h.UID, &h.BatchUID, &h.UserID, &h.MemberID, &h.UserInput, &h.MemberOutput, &h.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		list = append(list, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate histories: %w", err)
	}
	return list, nil
}
