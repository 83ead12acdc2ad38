package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/model"
)

const itemColumns = `id, name, category, status, last_seen, description,
	contact_name, contact_email, contact_phone, image_url, date`

func scanItem(row interface{ Scan(...any) error }, item *model.Item) error {
	return row.Scan(
		&item.ID, &item.Name, &item.Category, &item.Status, &item.LastSeen, &item.Description,
		&item.ContactName, &item.ContactEmail, &item.ContactPhone, &item.ImageURL, &item.Date,
	)
}

// CreateItem stores a newly reported item with status Lost and the current
// time as its date. imageURL may be empty.
func CreateItem(ctx context.Context, db *sql.DB, in model.NewItem, imageURL string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, category, status, last_seen, description,
		                    contact_name, contact_email, contact_phone, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Category, model.ItemStatusLost, in.LastSeen, in.Description,
		in.ContactName, in.ContactEmail, in.ContactPhone, imageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items in insertion order, optionally filtered by status.
func ListItems(ctx context.Context, db *sql.DB, status string) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items WHERE status = ? ORDER BY id`, status,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items ORDER BY id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SearchItems returns Lost items whose name or description contains query,
// compared with Unicode case folding. An empty query matches every Lost item.
func SearchItems(ctx context.Context, db *sql.DB, query string) ([]model.Item, error) {
	items, err := ListItems(ctx, db, model.ItemStatusLost)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}

	fold := cases.Fold()
	needle := fold.String(query)

	matched := items[:0]
	for _, item := range items {
		if strings.Contains(fold.String(item.Name), needle) ||
			strings.Contains(fold.String(item.Description), needle) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// UpdateItem merges patch into the stored item and returns the result.
// Returns ErrNotFound if the item does not exist.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, patch model.ItemPatch) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning item update: %w", err)
	}
	defer tx.Rollback()

	item := &model.Item{}
	err = scanItem(tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	), item)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item for update: %w", err)
	}

	patch.Apply(item)
	if !model.ValidItemStatus(item.Status) {
		return nil, fmt.Errorf("updating item: invalid status %q", item.Status)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, status = ?, last_seen = ?, description = ?,
		                  contact_name = ?, contact_email = ?, contact_phone = ?, image_url = ?
		 WHERE id = ?`,
		item.Name, item.Category, item.Status, item.LastSeen, item.Description,
		item.ContactName, item.ContactEmail, item.ContactPhone, item.ImageURL, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}
	return item, nil
}

// DeleteItem permanently removes an item.
// Returns ErrNotFound if the item does not exist.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
