package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"pragatipath-be/models"
	"pragatipath-be/store"
	"pragatipath-be/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	maxTitleLength = 200
	reportedNote   = "Issue reported by citizen."
)

// CreateIssueInput carries the raw form values of a new report.
type CreateIssueInput struct {
	Title         string
	Description   string
	Category      string
	Severity      string
	Longitude     string
	Latitude      string
	AddressString string
	Files         []*multipart.FileHeader
}

type ListIssuesInput struct {
	Page   int
	Limit  int
	Status string
}

// IssuePage is one page of the caller's issues.
type IssuePage struct {
	Issues      []models.IssueView `json:"issues"`
	CurrentPage int                `json:"currentPage"`
	TotalPages  int                `json:"totalPages"`
	TotalIssues int64              `json:"totalIssues"`
}

type IssueService struct {
	issues IssueStore
	media  MediaIngester
	logger *zap.Logger
	now    func() time.Time
}

func NewIssueService(issues IssueStore, media MediaIngester, logger *zap.Logger) *IssueService {
	return &IssueService{
		issues: issues,
		media:  media,
		logger: logger,
		now:    time.Now,
	}
}

func parseCoordinate(raw string, min, max float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < min || v > max {
		return 0, false
	}
	return v, true
}

// CreateIssue files a new report for the caller. Media failures are logged and skipped.
func (s *IssueService) CreateIssue(ctx context.Context, identity *models.Identity, in CreateIssueInput) (*models.IssueView, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)
	address := strings.TrimSpace(in.AddressString)
	if title == "" || description == "" || category == "" || address == "" ||
		strings.TrimSpace(in.Longitude) == "" || strings.TrimSpace(in.Latitude) == "" {
		return nil, utils.BadRequest("Please provide all required fields: title, description, category, location coordinates, and address.")
	}
	if len(title) > maxTitleLength {
		return nil, utils.BadRequest(fmt.Sprintf("Title must be at most %d characters.", maxTitleLength))
	}
	longitude, ok := parseCoordinate(in.Longitude, -180, 180)
	if !ok {
		return nil, utils.BadRequest("Invalid longitude.")
	}
	latitude, ok := parseCoordinate(in.Latitude, -90, 90)
	if !ok {
		return nil, utils.BadRequest("Invalid latitude.")
	}
	severity := models.SeverityMedium
	if in.Severity != "" {
		severity = models.Severity(in.Severity)
		if !severity.Valid() {
			return nil, utils.BadRequest("Severity must be one of Low, Medium, High.")
		}
	}

	now := s.now()
	seq, err := s.issues.NextDailySequence(ctx, now)
	if err != nil {
		return nil, utils.Internal("Internal server error. Failed to report issue.", err)
	}

	media := make([]models.Media, 0, len(in.Files))
	for _, fh := range in.Files {
		m, err := s.media.Ingest(ctx, fh, identity.ID)
		if err != nil {
			s.logger.Warn("skipping media file",
				zap.String("filename", fh.Filename),
				zap.String("user_id", identity.ID.Hex()),
				zap.Error(err),
			)
			continue
		}
		media = append(media, *m)
	}

	issue := &models.Issue{
		IssueID:     models.FormatIssueID(now, seq),
		Title:       title,
		Description: description,
		Category:    category,
		Severity:    severity,
		Location:    models.NewPoint(longitude, latitude, address),
		ReportedBy:  identity.ID,
		Status:      models.StatusReported,
		Media:       media,
		Timeline: []models.TimelineEvent{{
			Action:          models.ActionReported,
			PerformedBy:     identity.ID,
			PerformedByRole: identity.PrimaryRole(),
			Comment:         reportedNote,
			Timestamp:       now,
		}},
		SLA:       models.SLA{ReportedAt: now},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.issues.CreateIssue(ctx, issue); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("An issue with this ID already exists. Please try again.")
		}
		return nil, utils.Internal("Internal server error. Failed to report issue.", err)
	}

	s.logger.Info("issue reported",
		zap.String("issue_id", issue.IssueID),
		zap.String("user_id", identity.ID.Hex()),
		zap.Int("media", len(media)),
	)

	reporter := models.UserRef{ID: identity.ID, Name: identity.Name, Mobile: identity.Mobile}
	return &models.IssueView{Issue: *issue, ReportedBy: &reporter}, nil
}

// ListMyIssues pages through the caller's non-deleted issues, newest first.
func (s *IssueService) ListMyIssues(ctx context.Context, identity *models.Identity, in ListIssuesInput) (*IssuePage, error) {
	page, limit := in.Page, in.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	issues, total, err := s.issues.ListIssuesByReporter(ctx, store.IssueQuery{
		ReporterID: identity.ID,
		Status:     strings.TrimSpace(in.Status),
		Skip:       int64((page - 1) * limit),
		Limit:      int64(limit),
	})
	if err != nil {
		return nil, utils.Internal("Internal server error. Failed to fetch issues.", err)
	}

	reporter := &models.UserRef{ID: identity.ID, Name: identity.Name, Mobile: identity.Mobile}
	views := make([]models.IssueView, 0, len(issues))
	for _, is := range issues {
		views = append(views, models.IssueView{Issue: is, ReportedBy: reporter})
	}

	return &IssuePage{
		Issues:      views,
		CurrentPage: page,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		TotalIssues: total,
	}, nil
}

// GetIssueByID accepts either the document id or the PP- issue id.
// Only the reporter and staff may view an issue.
func (s *IssueService) GetIssueByID(ctx context.Context, identity *models.Identity, id string) (*models.IssueView, error) {
	var (
		issue *models.Issue
		err   error
	)
	switch {
	case models.IssueIDPattern.MatchString(id):
		issue, err = s.issues.FindIssueByIssueID(ctx, id)
	default:
		oid, perr := primitive.ObjectIDFromHex(id)
		if perr != nil {
			return nil, utils.BadRequest("Invalid issue ID.")
		}
		issue, err = s.issues.FindIssueByID(ctx, oid)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("Issue not found.")
		}
		return nil, utils.Internal("Internal server error. Failed to fetch issue.", err)
	}

	if issue.ReportedBy != identity.ID && !identity.IsStaff() {
		return nil, utils.Forbidden("Access denied. You can only view your own issues.")
	}

	view, err := s.expand(ctx, issue)
	if err != nil {
		return nil, utils.Internal("Internal server error. Failed to fetch issue.", err)
	}
	return view, nil
}

// expand resolves reporter, assigned admin and assigned department references.
func (s *IssueService) expand(ctx context.Context, issue *models.Issue) (*models.IssueView, error) {
	ids := []primitive.ObjectID{issue.ReportedBy}
	if issue.AssignedToAdminID != nil {
		ids = append(ids, *issue.AssignedToAdminID)
	}
	refs, err := s.issues.UserRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &models.IssueView{Issue: *issue}
	if ref, ok := refs[issue.ReportedBy]; ok {
		view.ReportedBy = &ref
	} else {
		view.ReportedBy = &models.UserRef{ID: issue.ReportedBy}
	}
	if issue.AssignedToAdminID != nil {
		ref, ok := refs[*issue.AssignedToAdminID]
		if !ok {
			ref = models.UserRef{ID: *issue.AssignedToAdminID}
		}
		ref.Mobile = ""
		view.AssignedToAdmin = &ref
	}
	if issue.AssignedDepartmentID != nil {
		dept, err := s.issues.FindDepartmentRef(ctx, *issue.AssignedDepartmentID)
		switch {
		case err == nil:
			view.AssignedDepartment = dept
		case errors.Is(err, store.ErrNotFound):
			view.AssignedDepartment = &models.DepartmentRef{ID: *issue.AssignedDepartmentID}
		default:
			return nil, err
		}
	}
	return view, nil
}
