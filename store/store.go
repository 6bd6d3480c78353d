// Package store persists users, issues and their supporting records.
package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// IssueQuery selects a page of one reporter's issues, newest first.
type IssueQuery struct {
	ReporterID primitive.ObjectID
	Status     string
	Skip       int64
	Limit      int64
}
