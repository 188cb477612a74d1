package model

// Actor identifies the authenticated caller of an operation as supplied
// by the identity collaborator (JWT claims in this deployment).  Staff
// may act on bookings they do not own where an operation permits it.
type Actor struct {
    ID    uint64 // subject claim, users.id upstream
    Staff bool   // role claim equals "STAFF"
}

// Owns reports whether the actor is the owner of the given user id.
func (a Actor) Owns(userID uint64) bool { return a.ID == userID }
