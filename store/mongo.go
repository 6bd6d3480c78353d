package store

import (
	"context"
	"errors"
	"time"

	"pragatipath-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 10 * time.Second

// Mongo is the MongoDB backed store.
type Mongo struct {
	users       *mongo.Collection
	issues      *mongo.Collection
	departments *mongo.Collection
	counters    *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		users:       db.Collection(models.UsersCollection),
		issues:      db.Collection(models.IssuesCollection),
		departments: db.Collection(models.DepartmentsCollection),
		counters:    db.Collection(models.CountersCollection),
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func (m *Mongo) FindUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	if err := m.users.FindOne(ctx, bson.M{"mobile": mobile}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (m *Mongo) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	if err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindIdentity loads only the non-sensitive fields of a user.
func (m *Mongo) FindIdentity(ctx context.Context, id primitive.ObjectID) (*models.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"name": 1, "email": 1, "mobile": 1, "roles": 1})
	var user models.User
	if err := m.users.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return user.Identity(), nil
}

func (m *Mongo) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := m.users.InsertOne(ctx, user)
	return translate(err)
}

// UserRefs resolves name and mobile for each id that exists.
func (m *Mongo) UserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	refs := make(map[primitive.ObjectID]models.UserRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"name": 1, "mobile": 1})
	cursor, err := m.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		refs[users[i].ID] = users[i].Ref()
	}
	return refs, nil
}

func (m *Mongo) updateUser(ctx context.Context, mobile string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update["$set"] = mergeSet(update["$set"], bson.M{"updatedAt": time.Now()})
	res, err := m.users.UpdateOne(ctx, bson.M{"mobile": mobile}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func mergeSet(existing interface{}, extra bson.M) bson.M {
	set, _ := existing.(bson.M)
	if set == nil {
		set = bson.M{}
	}
	for k, v := range extra {
		set[k] = v
	}
	return set
}

func (m *Mongo) AddRole(ctx context.Context, mobile, role string) error {
	return m.updateUser(ctx, mobile, bson.M{"$addToSet": bson.M{"roles": role}})
}

func (m *Mongo) RemoveRole(ctx context.Context, mobile, role string) error {
	return m.updateUser(ctx, mobile, bson.M{"$pull": bson.M{"roles": role}})
}

func (m *Mongo) SetActive(ctx context.Context, mobile string, active bool) error {
	return m.updateUser(ctx, mobile, bson.M{"$set": bson.M{"isActive": active}})
}

// NextDailySequence atomically increments the issue counter for day's calendar date.
func (m *Mongo) NextDailySequence(ctx context.Context, day time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "issue:" + models.DayKey(day)},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, translate(err)
	}
	return counter.Seq, nil
}

func (m *Mongo) CreateIssue(ctx context.Context, issue *models.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	_, err := m.issues.InsertOne(ctx, issue)
	return translate(err)
}

// ListIssuesByReporter returns one page of non-deleted issues without timeline and media.
func (m *Mongo) ListIssuesByReporter(ctx context.Context, q IssueQuery) ([]models.Issue, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"reportedBy": q.ReporterID, "isDeleted": false}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	total, err := m.issues.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(q.Skip).
		SetLimit(q.Limit).
		SetProjection(bson.M{"timeline": 0, "media": 0})

	cursor, err := m.issues.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	issues := make([]models.Issue, 0, q.Limit)
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (m *Mongo) findIssue(ctx context.Context, filter bson.M) (*models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter["isDeleted"] = false
	var issue models.Issue
	if err := m.issues.FindOne(ctx, filter).Decode(&issue); err != nil {
		return nil, translate(err)
	}
	return &issue, nil
}

func (m *Mongo) FindIssueByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	return m.findIssue(ctx, bson.M{"_id": id})
}

func (m *Mongo) FindIssueByIssueID(ctx context.Context, issueID string) (*models.Issue, error) {
	return m.findIssue(ctx, bson.M{"issueId": issueID})
}

func (m *Mongo) FindDepartmentRef(ctx context.Context, id primitive.ObjectID) (*models.DepartmentRef, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var dept models.Department
	if err := m.departments.FindOne(ctx, bson.M{"_id": id}).Decode(&dept); err != nil {
		return nil, translate(err)
	}
	return &models.DepartmentRef{ID: dept.ID, Name: dept.Name, Code: dept.Code}, nil
}

func (m *Mongo) CreateDepartment(ctx context.Context, dept *models.Department) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if dept.ID.IsZero() {
		dept.ID = primitive.NewObjectID()
	}
	_, err := m.departments.InsertOne(ctx, dept)
	return translate(err)
}
