package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"pragatipath-be/media"
	"pragatipath-be/middlewares"
	"pragatipath-be/models"
	"pragatipath-be/services"
	"pragatipath-be/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MediaField is the multipart field carrying issue photos.
const MediaField = "media"

// IssueFlow is the reporting side of the API.
type IssueFlow interface {
	CreateIssue(ctx context.Context, identity *models.Identity, in services.CreateIssueInput) (*models.IssueView, error)
	ListMyIssues(ctx context.Context, identity *models.Identity, in services.ListIssuesInput) (*services.IssuePage, error)
	GetIssueByID(ctx context.Context, identity *models.Identity, id string) (*models.IssueView, error)
}

type IssueController struct {
	issues IssueFlow
	logger *zap.Logger
}

func NewIssueController(issues IssueFlow, logger *zap.Logger) *IssueController {
	return &IssueController{issues: issues, logger: logger}
}

func (ic *IssueController) identity(c *gin.Context) (*models.Identity, bool) {
	identity, ok := middlewares.CurrentIdentity(c)
	if !ok {
		utils.RespondError(c, ic.logger, utils.Unauthorized("Access denied. No token provided."))
	}
	return identity, ok
}

// CreateIssue handles a multipart issue report with optional photos
func (ic *IssueController) CreateIssue(c *gin.Context) {
	identity, ok := ic.identity(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		utils.RespondError(c, ic.logger, utils.BadRequest("Invalid form data."))
		return
	}
	var input services.CreateIssueInput
	if form != nil {
		input.Files = form.File[MediaField]
	}
	if err := media.ValidateUploads(input.Files); err != nil {
		utils.RespondError(c, ic.logger, utils.BadRequest(uploadMessage(err)))
		return
	}

	input.Title = c.PostForm("title")
	input.Description = c.PostForm("description")
	input.Category = c.PostForm("category")
	input.Severity = c.PostForm("severity")
	input.Longitude = c.PostForm("longitude")
	input.Latitude = c.PostForm("latitude")
	input.AddressString = c.PostForm("addressString")

	issue, err := ic.issues.CreateIssue(c.Request.Context(), identity, input)
	if err != nil {
		utils.RespondError(c, ic.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Issue reported successfully.",
		"issue":   issue,
	})
}

// GetUserIssues lists the caller's issues, newest first
func (ic *IssueController) GetUserIssues(c *gin.Context) {
	identity, ok := ic.identity(c)
	if !ok {
		return
	}

	// malformed values fall back to the defaults
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := ic.issues.ListMyIssues(c.Request.Context(), identity, services.ListIssuesInput{
		Page:   page,
		Limit:  limit,
		Status: c.Query("status"),
	})
	if err != nil {
		utils.RespondError(c, ic.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetIssue returns a single issue with its references expanded
func (ic *IssueController) GetIssue(c *gin.Context) {
	identity, ok := ic.identity(c)
	if !ok {
		return
	}

	issue, err := ic.issues.GetIssueByID(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		utils.RespondError(c, ic.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

func uploadMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrTooManyFiles):
		return "Too many files. At most 5 images can be attached."
	case errors.Is(err, media.ErrTooLarge):
		return "File too large. Each image must be at most 5MB."
	case errors.Is(err, media.ErrNotImage):
		return "Only JPEG, PNG, JPG, and GIF images are allowed."
	default:
		return "Invalid upload."
	}
}
