package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"pragatipath-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemory_UserUniqueMobile(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateUser(ctx, &models.User{Name: "A", Mobile: "9876543210"}))
	err := m.CreateUser(ctx, &models.User{Name: "B", Mobile: "9876543210"})
	assert.ErrorIs(t, err, ErrDuplicate)

	u, err := m.FindUserByMobile(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)

	_, err = m.FindUserByMobile(ctx, "0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Roles(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	u := &models.User{Name: "A", Mobile: "9876543210", Roles: models.DefaultRoles()}
	require.NoError(t, m.CreateUser(ctx, u))

	require.NoError(t, m.AddRole(ctx, "9876543210", models.RoleAdmin))
	require.NoError(t, m.AddRole(ctx, "9876543210", models.RoleAdmin))
	id, err := m.FindIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleCitizen, models.RoleAdmin}, id.Roles)

	require.NoError(t, m.RemoveRole(ctx, "9876543210", models.RoleCitizen))
	id, _ = m.FindIdentity(ctx, u.ID)
	assert.Equal(t, []string{models.RoleAdmin}, id.Roles)

	assert.ErrorIs(t, m.SetActive(ctx, "1111111111", false), ErrNotFound)
}

func TestMemory_NextDailySequenceConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	day := time.Date(2026, 5, 1, 9, 0, 0, 0, time.Local)

	const n = 50
	seen := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := m.NextDailySequence(ctx, day)
			assert.NoError(t, err)
			seen <- seq
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)
	for s := range seen {
		unique[s] = true
	}
	assert.Len(t, unique, n)

	next, _ := m.NextDailySequence(ctx, day.AddDate(0, 0, 1))
	assert.Equal(t, int64(1), next)
}

func TestMemory_ListIssuesByReporter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	reporter := primitive.NewObjectID()
	other := primitive.NewObjectID()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 15; i++ {
		status := models.StatusReported
		if i%5 == 0 {
			status = models.StatusResolved
		}
		require.NoError(t, m.CreateIssue(ctx, &models.Issue{
			IssueID:    models.FormatIssueID(base, int64(i+1)),
			ReportedBy: reporter,
			Status:     status,
			Timeline:   []models.TimelineEvent{{Action: models.ActionReported}},
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, m.CreateIssue(ctx, &models.Issue{IssueID: "PP-20260501-0099", ReportedBy: other}))

	page, total, err := m.ListIssuesByReporter(ctx, IssueQuery{ReporterID: reporter, Skip: 10, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Len(t, page, 5)

	first, _, _ := m.ListIssuesByReporter(ctx, IssueQuery{ReporterID: reporter, Limit: 10})
	assert.Equal(t, "PP-20260501-0015", first[0].IssueID)
	assert.Nil(t, first[0].Timeline)

	resolved, total, _ := m.ListIssuesByReporter(ctx, IssueQuery{ReporterID: reporter, Status: "resolved", Limit: 10})
	assert.Equal(t, int64(3), total)
	assert.Len(t, resolved, 3)
}

func TestMemory_IssueLookupsHideDeleted(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	issue := &models.Issue{IssueID: "PP-20260501-0001", ReportedBy: primitive.NewObjectID()}
	require.NoError(t, m.CreateIssue(ctx, issue))

	found, err := m.FindIssueByIssueID(ctx, "PP-20260501-0001")
	require.NoError(t, err)
	assert.Equal(t, issue.ID, found.ID)

	assert.ErrorIs(t, m.CreateIssue(ctx, &models.Issue{IssueID: "PP-20260501-0001"}), ErrDuplicate)

	require.NoError(t, m.SoftDeleteIssue(ctx, issue.ID))
	_, err = m.FindIssueByID(ctx, issue.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
