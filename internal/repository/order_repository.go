package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/swan-prince/booking-server/internal/booking"
    "github.com/swan-prince/booking-server/internal/model"
)

// OrderRepo provides the order collaborator contract over the orders and
// order_items tables.  It implements booking.Orders.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// PendingOrder returns the user's open order with the seller, creating
// one when none exists.  At most one incomplete order per (user, seller)
// pair is assumed; the oldest wins if the assumption is ever violated.
func (r *OrderRepo) PendingOrder(ctx context.Context, userID, sellerID uint64) (*model.Order, error) {
    const sel = `SELECT id, user_id, seller_id, complete, created_at FROM orders
                 WHERE user_id = ? AND seller_id = ? AND complete = 0
                 ORDER BY id LIMIT 1`
    o := &model.Order{}
    err := r.db.QueryRowContext(ctx, sel, userID, sellerID).
        Scan(&o.ID, &o.UserID, &o.SellerID, &o.Complete, &o.CreatedAt)
    if err == nil {
        return o, nil
    }
    if !errors.Is(err, sql.ErrNoRows) {
        return nil, err
    }

    const ins = `INSERT INTO orders (user_id, seller_id, complete) VALUES (?, ?, 0)`
    res, err := r.db.ExecContext(ctx, ins, userID, sellerID)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    // Query back the full row to populate timestamps and defaults.
    const back = `SELECT id, user_id, seller_id, complete, created_at FROM orders WHERE id = ?`
    err = r.db.QueryRowContext(ctx, back, id).
        Scan(&o.ID, &o.UserID, &o.SellerID, &o.Complete, &o.CreatedAt)
    if err != nil {
        return nil, err
    }
    return o, nil
}

// HasItems reports whether the order holds at least one item.
func (r *OrderRepo) HasItems(ctx context.Context, orderID uint64) (bool, error) {
    const q = `SELECT EXISTS(SELECT 1 FROM order_items WHERE order_id = ?)`
    var exists bool
    err := r.db.QueryRowContext(ctx, q, orderID).Scan(&exists)
    return exists, err
}

var _ booking.Orders = (*OrderRepo)(nil)
