package model

import "time"

// Seller carries the slice of the catalog the booking core consumes: the
// identity of a seller, its configured wait time and whether it seats
// customers by table.  Catalog management itself (products, categories,
// images) lives outside this service.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name, used in event payloads and logs.
//  WaitTimeMin – minutes allotted to the active booking before forced expiry.
//  HasTables   – whether bookings for this seller must name a table.
type Seller struct {
    ID          uint64 // sellers.id
    Name        string // sellers.name
    WaitTimeMin int    // sellers.wait_time
    HasTables   bool   // derived: any row in tables for this seller
}

// WaitTime returns the seller's configured wait time as a duration.
func (s *Seller) WaitTime() time.Duration {
    return time.Duration(s.WaitTimeMin) * time.Minute
}

// Table is a physical table belonging to a seller.  Only the ownership
// link matters to the booking core; layout coordinates are kept so the
// catalog side can render seating grids.
type Table struct {
    ID       uint64 // tables.id
    SellerID uint64 // tables.seller_id
    Row      int    // tables.row
    Col      int    // tables.col
}
