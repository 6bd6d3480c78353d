// Package services implements the auth and issue flows on top of the store.
package services

import (
	"context"
	"mime/multipart"
	"time"

	"pragatipath-be/models"
	"pragatipath-be/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the credential store used by the auth flow.
type UserStore interface {
	FindUserByMobile(ctx context.Context, mobile string) (*models.User, error)
	FindIdentity(ctx context.Context, id primitive.ObjectID) (*models.Identity, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// IssueStore persists issues and resolves the references they embed.
type IssueStore interface {
	NextDailySequence(ctx context.Context, day time.Time) (int64, error)
	CreateIssue(ctx context.Context, issue *models.Issue) error
	ListIssuesByReporter(ctx context.Context, q store.IssueQuery) ([]models.Issue, int64, error)
	FindIssueByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	FindIssueByIssueID(ctx context.Context, issueID string) (*models.Issue, error)
	UserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error)
	FindDepartmentRef(ctx context.Context, id primitive.ObjectID) (*models.DepartmentRef, error)
}

// MediaIngester processes one uploaded file into a stored media reference.
type MediaIngester interface {
	Ingest(ctx context.Context, fh *multipart.FileHeader, uploader primitive.ObjectID) (*models.Media, error)
}

// TokenIssuer mints bearer tokens.
type TokenIssuer interface {
	Issue(userID string, roles []string) (string, error)
}
