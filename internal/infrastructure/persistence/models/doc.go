// Package models holds the GORM rows behind the fulfillment Order Store.
// Domain types carry no ORM tags; each model converts with ToDomain and FromDomain.
package models
