package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// contactColumns is the ordered list of columns selected in contact queries.
// Must match the scan order in scanContact.
const contactColumns = `c.id, c.name, c.email, c.email_key, c.created_at, c.updated_at`

// scanContact scans a sql.Row (or sql.Rows via its Scan method) into a domain.Contact.
func scanContact(scanner interface{ Scan(dest ...any) error }) (*domain.Contact, error) {
	var c domain.Contact

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.EmailKey,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CreateContact inserts a new contact and sets its ID.
// Returns store.ErrAlreadyExists on duplicate email key.
func (s *Store) CreateContact(ctx context.Context, c *domain.Contact) error {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO contacts (name, email, email_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`),
		c.Name,
		c.Email,
		c.EmailKey,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err := row.Scan(&c.ID); err != nil {
		return mapWriteError(err)
	}
	return nil
}

// ContactEmailTaken reports whether a contact other than exceptID already
// uses emailKey.
func (s *Store) ContactEmailTaken(ctx context.Context, emailKey string, exceptID int64) (bool, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM contacts WHERE email_key = ? AND id <> ?`, emailKey, exceptID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetContact retrieves a contact by its ID.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+contactColumns+` FROM contacts c WHERE c.id = ?`), id)

	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateContact writes every mutable column of an existing contact.
// Returns store.ErrNotFound if the contact does not exist and
// store.ErrAlreadyExists if the new email key is taken.
func (s *Store) UpdateContact(ctx context.Context, c *domain.Contact) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE contacts
		SET name = ?, email = ?, email_key = ?, updated_at = ?
		WHERE id = ?`),
		c.Name,
		c.Email,
		c.EmailKey,
		formatTime(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return checkAffected(res)
}

// DeleteContact removes a contact and its tag associations.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(
		`DELETE FROM contact_tags WHERE contact_id = ?`), id); err != nil {
		return fmt.Errorf("delete contact tags: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM contacts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

// ListContacts returns one page of contacts ordered by ID.
func (s *Store) ListContacts(ctx context.Context, params store.PageParams) (store.Page[*domain.Contact], error) {
	params.Validate()

	total, err := s.count(ctx, `SELECT COUNT(*) FROM contacts`)
	if err != nil {
		return store.Page[*domain.Contact]{}, fmt.Errorf("count contacts: %w", err)
	}
	if params.Offset() >= total {
		return store.NewPage[*domain.Contact](nil, params, total), nil
	}

	items, err := s.queryContacts(ctx,
		`SELECT `+contactColumns+` FROM contacts c ORDER BY c.id ASC LIMIT ? OFFSET ?`,
		params.Limit(), params.Offset())
	if err != nil {
		return store.Page[*domain.Contact]{}, fmt.Errorf("list contacts: %w", err)
	}
	return store.NewPage(items, params, total), nil
}

// ListContactsByTagKey returns one page of the contacts associated with the tag
// whose folded name equals nameKey, in association order.
func (s *Store) ListContactsByTagKey(ctx context.Context, nameKey string, params store.PageParams) (store.Page[*domain.Contact], error) {
	return s.listContactsByTag(ctx, "t.name_key = ?", nameKey, params)
}

// ListContactsByTagName returns one page of the contacts associated with the
// tag whose stored name equals name exactly, in association order.
func (s *Store) ListContactsByTagName(ctx context.Context, name string, params store.PageParams) (store.Page[*domain.Contact], error) {
	return s.listContactsByTag(ctx, "t.name = ?", name, params)
}

func (s *Store) listContactsByTag(ctx context.Context, cond, arg string, params store.PageParams) (store.Page[*domain.Contact], error) {
	params.Validate()

	total, err := s.count(ctx, `
		SELECT COUNT(*)
		FROM contact_tags ct
		JOIN tags t ON t.id = ct.tag_id
		WHERE `+cond, arg)
	if err != nil {
		return store.Page[*domain.Contact]{}, fmt.Errorf("count tagged contacts: %w", err)
	}
	if params.Offset() >= total {
		return store.NewPage[*domain.Contact](nil, params, total), nil
	}

	items, err := s.queryContacts(ctx, `
		SELECT `+contactColumns+`
		FROM contacts c
		JOIN contact_tags ct ON ct.contact_id = c.id
		JOIN tags t ON t.id = ct.tag_id
		WHERE `+cond+`
		ORDER BY ct.id ASC
		LIMIT ? OFFSET ?`,
		arg, params.Limit(), params.Offset())
	if err != nil {
		return store.Page[*domain.Contact]{}, fmt.Errorf("list tagged contacts: %w", err)
	}
	return store.NewPage(items, params, total), nil
}

func (s *Store) queryContacts(ctx context.Context, query string, args ...any) ([]*domain.Contact, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
