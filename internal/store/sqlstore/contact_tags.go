package sqlstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rolodexapp/rolodex-server/internal/domain"
)

// AddTagToContact records an association between a contact and a tag.
// Returns store.ErrAlreadyExists if the pair is already associated and
// store.ErrConstraint if either side does not exist.
func (s *Store) AddTagToContact(ctx context.Context, contactID, tagID int64) (*domain.ContactTag, error) {
	ct := &domain.ContactTag{
		ContactID: contactID,
		TagID:     tagID,
		CreatedAt: time.Now().UTC(),
	}

	row := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO contact_tags (contact_id, tag_id, created_at)
		VALUES (?, ?, ?)
		RETURNING id`),
		contactID,
		tagID,
		formatTime(ct.CreatedAt),
	)
	if err := row.Scan(&ct.ID); err != nil {
		return nil, mapWriteError(err)
	}
	return ct, nil
}

// RemoveTagFromContact deletes an association.
// Returns store.ErrNotFound if the pair was not associated.
func (s *Store) RemoveTagFromContact(ctx context.Context, contactID, tagID int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM contact_tags WHERE contact_id = ? AND tag_id = ?`),
		contactID, tagID)
	if err != nil {
		return fmt.Errorf("remove tag from contact: %w", err)
	}
	return checkAffected(res)
}

// maxIDsPerQuery bounds the IN list of the batch loaders. SQLite rejects
// statements with more than 32766 variables and pages are unbounded.
const maxIDsPerQuery = 500

// GetTagsForContacts loads the tags of many contacts, one query per batch of
// maxIDsPerQuery IDs. Each contact's tags are in association order.
func (s *Store) GetTagsForContacts(ctx context.Context, contactIDs []int64) (map[int64][]*domain.Tag, error) {
	result := make(map[int64][]*domain.Tag, len(contactIDs))
	for batch := range slices.Chunk(contactIDs, maxIDsPerQuery) {
		if err := s.loadTagsForContacts(ctx, batch, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Store) loadTagsForContacts(ctx context.Context, contactIDs []int64, result map[int64][]*domain.Tag) error {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT ct.contact_id, `+tagColumns+`
		FROM contact_tags ct
		JOIN tags t ON t.id = ct.tag_id
		WHERE ct.contact_id IN (`+placeholders(len(contactIDs))+`)
		ORDER BY ct.id ASC`),
		int64Args(contactIDs)...)
	if err != nil {
		return fmt.Errorf("get tags for contacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contactID int64
		t, err := scanTag(prefixScanner{rows, &contactID})
		if err != nil {
			return err
		}
		result[contactID] = append(result[contactID], t)
	}
	return rows.Err()
}

// GetContactsForTags loads the contacts of many tags, one query per batch of
// maxIDsPerQuery IDs. Each tag's contacts are in association order.
func (s *Store) GetContactsForTags(ctx context.Context, tagIDs []int64) (map[int64][]*domain.Contact, error) {
	result := make(map[int64][]*domain.Contact, len(tagIDs))
	for batch := range slices.Chunk(tagIDs, maxIDsPerQuery) {
		if err := s.loadContactsForTags(ctx, batch, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Store) loadContactsForTags(ctx context.Context, tagIDs []int64, result map[int64][]*domain.Contact) error {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT ct.tag_id, `+contactColumns+`
		FROM contact_tags ct
		JOIN contacts c ON c.id = ct.contact_id
		WHERE ct.tag_id IN (`+placeholders(len(tagIDs))+`)
		ORDER BY ct.id ASC`),
		int64Args(tagIDs)...)
	if err != nil {
		return fmt.Errorf("get contacts for tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tagID int64
		c, err := scanContact(prefixScanner{rows, &tagID})
		if err != nil {
			return err
		}
		result[tagID] = append(result[tagID], c)
	}
	return rows.Err()
}

// CountContactsForTag returns how many contacts carry a tag.
func (s *Store) CountContactsForTag(ctx context.Context, tagID int64) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM contact_tags WHERE tag_id = ?`, tagID)
}

// prefixScanner scans one leading column into key before handing the rest to
// a row scanner.
type prefixScanner struct {
	rows interface{ Scan(dest ...any) error }
	key  *int64
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.rows.Scan(append([]any{p.key}, dest...)...)
}
