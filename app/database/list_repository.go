package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ListRepository handles database operations for reading lists and their items
type ListRepository struct {
	db *DB
}

func NewListRepository(db *DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) ListLists(ctx context.Context) ([]List, error) {
	lists := []List{}
	err := r.db.SelectContext(ctx, &lists, `SELECT id, name, description, color, created_at, updated_at FROM lists ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	return lists, nil
}

func (r *ListRepository) GetList(ctx context.Context, id int64) (*List, error) {
	var list List
	err := r.db.GetContext(ctx, &list, `SELECT id, name, description, color, created_at, updated_at FROM lists WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return &list, nil
}

func (r *ListRepository) CreateList(ctx context.Context, in ListInput) (*List, error) {
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lists (name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, in.Name, in.Description, listColor(in.Color), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert list: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get list id: %w", err)
	}

	return r.GetList(ctx, id)
}

func (r *ListRepository) UpdateList(ctx context.Context, id int64, in ListInput) (*List, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE lists
		SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ?
	`, in.Name, in.Description, listColor(in.Color), time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}

	if err := requireAffected(res); err != nil {
		return nil, err
	}

	return r.GetList(ctx, id)
}

func (r *ListRepository) DeleteList(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	return requireAffected(res)
}

// AddListItem links an article to a list. Adding an existing pair is a no-op.
func (r *ListRepository) AddListItem(ctx context.Context, listID, articleID int64) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM lists WHERE id = ?) AND EXISTS (SELECT 1 FROM articles WHERE id = ?)
	`, listID, articleID)
	if err != nil {
		return fmt.Errorf("failed to check list item references: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO list_items (list_id, article_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (list_id, article_id) DO NOTHING
	`, listID, articleID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert list item: %w", err)
	}

	return nil
}

func (r *ListRepository) RemoveListItem(ctx context.Context, listID, articleID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM list_items WHERE list_id = ? AND article_id = ?`, listID, articleID)
	if err != nil {
		return fmt.Errorf("failed to delete list item: %w", err)
	}

	return requireAffected(res)
}

func listColor(color string) string {
	if color == "" {
		return DefaultListColor
	}
	return color
}
