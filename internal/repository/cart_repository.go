package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
)

// CartRepo provides data access to cart_lines, the mutable per-user
// cart. Option selections are stored as a JSON document per line and
// validated against the catalog only when the cart is materialized at
// checkout; prices are never stored here.
type CartRepo struct {
	db *sql.DB
}

// NewCartRepo returns a CartRepo bound to the given database.
func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// LinesByUser returns all cart lines of a user ordered by insertion.
func (r *CartRepo) LinesByUser(ctx context.Context, userID uint64) ([]model.CartLine, error) {
	const q = `SELECT id, user_id, item_id, quantity, variant_id, addon_ids, created_at
	           FROM cart_lines WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []model.CartLine
	for rows.Next() {
		var l model.CartLine
		var variantID sql.NullInt64
		var addonsRaw sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.ItemID, &l.Quantity, &variantID, &addonsRaw, &l.CreatedAt); err != nil {
			return nil, err
		}
		if variantID.Valid {
			v := uint64(variantID.Int64)
			l.Selection.VariantID = &v
		}
		if addonsRaw.Valid && addonsRaw.String != "" {
			if err := json.Unmarshal([]byte(addonsRaw.String), &l.Selection.AddonIDs); err != nil {
				return nil, fmt.Errorf("decode addon ids for cart line %d: %w", l.ID, err)
			}
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// AddLine inserts a new cart line for the user and populates its
// generated id.
func (r *CartRepo) AddLine(ctx context.Context, line *model.CartLine) error {
	var variantID interface{}
	if line.Selection.VariantID != nil {
		variantID = *line.Selection.VariantID
	}
	addons, err := json.Marshal(line.Selection.AddonIDs)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_lines (user_id, item_id, quantity, variant_id, addon_ids) VALUES (?, ?, ?, ?, ?)`,
		line.UserID, line.ItemID, line.Quantity, variantID, string(addons),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	line.ID = uint64(id)
	return nil
}

// SetQuantity updates the quantity of a line owned by the user in a
// single conditional statement. A read-modify-write pair would race
// with a concurrent update; the WHERE clause carries both the line and
// the owner so a stranger's id simply matches nothing.
func (r *CartRepo) SetQuantity(ctx context.Context, userID, lineID uint64, quantity uint32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_lines SET quantity = ? WHERE id = ? AND user_id = ?`,
		quantity, lineID, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fault.ErrNotFound
	}
	return nil
}

// RemoveLine deletes a single line owned by the user.
func (r *CartRepo) RemoveLine(ctx context.Context, userID, lineID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE id = ? AND user_id = ?`, lineID, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fault.ErrNotFound
	}
	return nil
}

// Clear removes all lines of a user's cart.
func (r *CartRepo) Clear(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?`, userID)
	return err
}

// ClearTx removes all lines of a user's cart within the provided
// transaction. Used by order confirmation so the cart clear commits
// atomically with the status transition.
func (r *CartRepo) ClearTx(ctx context.Context, tx *sql.Tx, userID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?`, userID)
	return err
}
