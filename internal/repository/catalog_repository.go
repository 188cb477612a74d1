package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/swan-prince/booking-server/internal/booking"
    "github.com/swan-prince/booking-server/internal/model"
)

// CatalogRepo exposes the read-only catalog slice the booking engine
// consumes: seller wait-time configuration and table ownership.  It
// implements booking.Catalog.  The sellers and tables rows themselves
// are managed by the catalog side of the system.
type CatalogRepo struct {
    db *sql.DB
}

// NewCatalogRepo returns a new CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// Seller returns a seller with its wait time and a derived has-tables
// flag.
func (r *CatalogRepo) Seller(ctx context.Context, id uint64) (*model.Seller, error) {
    const q = `SELECT s.id, s.name, s.wait_time,
                      EXISTS(SELECT 1 FROM tables t WHERE t.seller_id = s.id)
               FROM sellers s WHERE s.id = ?`
    s := &model.Seller{}
    err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.WaitTimeMin, &s.HasTables)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, &booking.NotFoundError{Entity: "seller", ID: id}
    }
    if err != nil {
        return nil, err
    }
    return s, nil
}

// Table returns a table with its owning seller.
func (r *CatalogRepo) Table(ctx context.Context, id uint64) (*model.Table, error) {
    const q = `SELECT id, seller_id, ` + "`row`, col" + ` FROM tables WHERE id = ?`
    t := &model.Table{}
    err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.SellerID, &t.Row, &t.Col)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, &booking.NotFoundError{Entity: "table", ID: id}
    }
    if err != nil {
        return nil, err
    }
    return t, nil
}

var _ booking.Catalog = (*CatalogRepo)(nil)
var _ booking.Store = (*BookingRepo)(nil)
