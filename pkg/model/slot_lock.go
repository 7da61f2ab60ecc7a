package model

import "time"

// SlotLock is an advisory lock keyed by the (listing, date, time) triple.
// Inserting one with an already-taken _id fails with a duplicate key error,
// which serializes concurrent booking attempts for the same slot.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
