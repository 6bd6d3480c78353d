package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"pragatipath-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a thread-safe in-process store with the same semantics as Mongo.
// It backs STORE_DRIVER=memory and the unit tests.
type Memory struct {
	mu          sync.RWMutex
	users       map[primitive.ObjectID]models.User
	byMobile    map[string]primitive.ObjectID
	issues      []models.Issue
	issueIDs    map[string]struct{}
	departments map[primitive.ObjectID]models.Department
	counters    map[string]int64
}

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[primitive.ObjectID]models.User),
		byMobile:    make(map[string]primitive.ObjectID),
		issueIDs:    make(map[string]struct{}),
		departments: make(map[primitive.ObjectID]models.Department),
		counters:    make(map[string]int64),
	}
}

func (m *Memory) FindUserByMobile(_ context.Context, mobile string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byMobile[mobile]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) FindIdentity(ctx context.Context, id primitive.ObjectID) (*models.Identity, error) {
	u, err := m.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Identity(), nil
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byMobile[user.Mobile]; exists {
		return ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	u := *user
	u.Roles = append([]string(nil), user.Roles...)
	m.users[u.ID] = u
	m.byMobile[u.Mobile] = u.ID
	return nil
}

func (m *Memory) UserRefs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	refs := make(map[primitive.ObjectID]models.UserRef, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			refs[id] = u.Ref()
		}
	}
	return refs, nil
}

func (m *Memory) updateUser(mobile string, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byMobile[mobile]
	if !ok {
		return ErrNotFound
	}
	u := m.users[id]
	fn(&u)
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return nil
}

func (m *Memory) AddRole(_ context.Context, mobile, role string) error {
	return m.updateUser(mobile, func(u *models.User) {
		if !u.HasRole(role) {
			u.Roles = append(append([]string(nil), u.Roles...), role)
		}
	})
}

func (m *Memory) RemoveRole(_ context.Context, mobile, role string) error {
	return m.updateUser(mobile, func(u *models.User) {
		kept := make([]string, 0, len(u.Roles))
		for _, r := range u.Roles {
			if r != role {
				kept = append(kept, r)
			}
		}
		u.Roles = kept
	})
}

func (m *Memory) SetActive(_ context.Context, mobile string, active bool) error {
	return m.updateUser(mobile, func(u *models.User) { u.IsActive = active })
}

func (m *Memory) NextDailySequence(_ context.Context, day time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "issue:" + models.DayKey(day)
	m.counters[key]++
	return m.counters[key], nil
}

func (m *Memory) CreateIssue(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.issueIDs[issue.IssueID]; exists {
		return ErrDuplicate
	}
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	m.issues = append(m.issues, copyIssue(*issue))
	m.issueIDs[issue.IssueID] = struct{}{}
	return nil
}

func (m *Memory) ListIssuesByReporter(_ context.Context, q IssueQuery) ([]models.Issue, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// iterate newest-inserted first so equal timestamps keep insertion order reversed
	matched := make([]models.Issue, 0)
	for i := len(m.issues) - 1; i >= 0; i-- {
		is := m.issues[i]
		if is.IsDeleted || is.ReportedBy != q.ReporterID {
			continue
		}
		if q.Status != "" && string(is.Status) != q.Status {
			continue
		}
		matched = append(matched, is)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := q.Skip
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < total {
		end = start + q.Limit
	}

	page := make([]models.Issue, 0, end-start)
	for _, is := range matched[start:end] {
		is.Timeline = nil
		is.Media = nil
		page = append(page, is)
	}
	return page, total, nil
}

func (m *Memory) findIssue(match func(models.Issue) bool) (*models.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, is := range m.issues {
		if !is.IsDeleted && match(is) {
			c := copyIssue(is)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindIssueByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	return m.findIssue(func(is models.Issue) bool { return is.ID == id })
}

func (m *Memory) FindIssueByIssueID(_ context.Context, issueID string) (*models.Issue, error) {
	return m.findIssue(func(is models.Issue) bool { return is.IssueID == issueID })
}

// SoftDeleteIssue marks an issue deleted; deleted issues are invisible to reads.
func (m *Memory) SoftDeleteIssue(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.issues {
		if m.issues[i].ID == id && !m.issues[i].IsDeleted {
			m.issues[i].IsDeleted = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) FindDepartmentRef(_ context.Context, id primitive.ObjectID) (*models.DepartmentRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.departments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.DepartmentRef{ID: d.ID, Name: d.Name, Code: d.Code}, nil
}

func (m *Memory) CreateDepartment(_ context.Context, dept *models.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dept.ID.IsZero() {
		dept.ID = primitive.NewObjectID()
	}
	m.departments[dept.ID] = *dept
	return nil
}

func copyIssue(is models.Issue) models.Issue {
	is.Media = append([]models.Media(nil), is.Media...)
	is.Timeline = append([]models.TimelineEvent(nil), is.Timeline...)
	is.ResolutionProof = append([]models.Media(nil), is.ResolutionProof...)
	return is
}
