package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `t.id, t.name, t.name_key, t.created_at, t.updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.Name,
		&t.NameKey,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a new tag and sets its ID.
// Returns store.ErrAlreadyExists on duplicate name key.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO tags (name, name_key, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		t.Name,
		t.NameKey,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err := row.Scan(&t.ID); err != nil {
		return mapWriteError(err)
	}
	return nil
}

// GetTag retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	return s.getTag(ctx, `t.id = ?`, id)
}

// GetTagByKey retrieves a tag by its folded name.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByKey(ctx context.Context, nameKey string) (*domain.Tag, error) {
	return s.getTag(ctx, `t.name_key = ?`, nameKey)
}

func (s *Store) getTag(ctx context.Context, cond string, arg any) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+tagColumns+` FROM tags t WHERE `+cond), arg)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTag writes the name of an existing tag.
// Returns store.ErrNotFound if the tag does not exist and
// store.ErrAlreadyExists if the new name key is taken.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE tags
		SET name = ?, name_key = ?, updated_at = ?
		WHERE id = ?`),
		t.Name,
		t.NameKey,
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return checkAffected(res)
}

// DeleteTag removes a tag and its contact associations.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(
		`DELETE FROM contact_tags WHERE tag_id = ?`), id); err != nil {
		return fmt.Errorf("delete tag contacts: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM tags WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

// ListTags returns one page of tags ordered by ID.
func (s *Store) ListTags(ctx context.Context, params store.PageParams) (store.Page[*domain.Tag], error) {
	params.Validate()

	total, err := s.count(ctx, `SELECT COUNT(*) FROM tags`)
	if err != nil {
		return store.Page[*domain.Tag]{}, fmt.Errorf("count tags: %w", err)
	}
	if params.Offset() >= total {
		return store.NewPage[*domain.Tag](nil, params, total), nil
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+tagColumns+` FROM tags t ORDER BY t.id ASC LIMIT ? OFFSET ?`),
		params.Limit(), params.Offset())
	if err != nil {
		return store.Page[*domain.Tag]{}, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return store.Page[*domain.Tag]{}, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return store.Page[*domain.Tag]{}, err
	}
	return store.NewPage(tags, params, total), nil
}
