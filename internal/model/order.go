package model

import "time"

// Order is the cart a user builds with one seller before booking.  A
// booking may only be created once its pending order holds at least one
// item; creating the booking marks the order complete.  Item contents and
// pricing belong to the catalog side of the system and are not consumed
// here beyond their existence.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the order.
//  SellerID  – seller the order was built against.
//  Complete  – whether the order has been claimed by a booking.
//  CreatedAt – creation timestamp.
type Order struct {
    ID        uint64    // orders.id
    UserID    uint64    // orders.user_id
    SellerID  uint64    // orders.seller_id
    Complete  bool      // orders.complete
    CreatedAt time.Time // orders.created_at
}

// OrderItem is a single line of an order.  The booking core only ever
// asks whether any items exist for an order; quantities and product
// references are listed for completeness of the schema mapping.
type OrderItem struct {
    ID        uint64 // order_items.id
    OrderID   uint64 // order_items.order_id
    ProductID uint64 // order_items.product_id
    Quantity  int    // order_items.quantity
}
