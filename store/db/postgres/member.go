package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hrygo/personalboard/store"
)

const memberColumns = "id, user_id, name, description, background, role, picture, created_ts, updated_ts"

func (d *DB) CreateMember(ctx context.Context, create *store.Member) (*store.Member, error) {
	fields := []string{"id", "user_id", "name", "description", "background", "role", "picture"}
	args := []any{create.ID, create.UserID, create.Name, create.Description, create.Background, pq.Array(roleOrEmpty(create.Role)), create.Picture}

	stmt := `INSERT INTO board_member (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, fmt.Errorf("failed to create board_member: %w", err)
	}
	create.Role = roleOrEmpty(create.Role)
	return create, nil
}

func (d *DB) ListMembers(ctx context.Context, find *store.FindMember) ([]*store.Member, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT ` + memberColumns + ` FROM board_member WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts ASC, id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list board_members: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Member, 0)
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate board_members: %w", err)
	}
	return list, nil
}

func (d *DB) UpdateMember(ctx context.Context, update *store.UpdateMember) (*store.Member, error) {
	set, args := []string{}, []any{}

	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Background; v != nil {
		set, args = append(set, "background = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Role; v != nil {
		set, args = append(set, "role = "+placeholder(len(args)+1)), append(args, pq.Array(roleOrEmpty(*v)))
	}
	if v := update.Picture; v != nil {
		set, args = append(set, "picture = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE board_member SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + ` RETURNING ` + memberColumns
	member, err := scanMember(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("board_member %s: %w", update.ID, store.ErrNotFound)
		}
		return nil, err
	}
	return member, nil
}

func (d *DB) DeleteMember(ctx context.Context, delete *store.DeleteMember) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM board_member WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete board_member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("board_member %s: %w", delete.ID, store.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*store.Member, error) {
	member := &store.Member{}
	var role pq.StringArray
	var picture sql.NullString
	if err := row.Scan(
		&member.ID,
		&member.UserID,
		&member.Name,
		&member.Description,
		&member.Background,
		&role,
		&picture,
		&member.CreatedTs,
		&member.UpdatedTs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan board_member: %w", err)
	}
	member.Role = roleOrEmpty(role)
	if picture.Valid {
		member.Picture = &picture.String
	}
	return member, nil
}

func roleOrEmpty(role []string) []string {
	if role == nil {
		return []string{}
	}
	return role
}
