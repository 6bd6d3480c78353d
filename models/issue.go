package models

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Severity enum
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	StatusReported   IssueStatus = "reported"
	StatusAssigned   IssueStatus = "assigned"
	StatusInProgress IssueStatus = "in_progress"
	StatusResolved   IssueStatus = "resolved"
	StatusClosed     IssueStatus = "closed"
	StatusRejected   IssueStatus = "rejected"
)

const ActionReported = "reported"

// Location is a GeoJSON point plus the address the reporter typed.
type Location struct {
	Type          string     `bson:"type" json:"type"`
	Coordinates   [2]float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
	AddressString string     `bson:"addressString" json:"addressString"`
}

func NewPoint(longitude, latitude float64, address string) Location {
	return Location{
		Type:          "Point",
		Coordinates:   [2]float64{longitude, latitude},
		AddressString: address,
	}
}

type Media struct {
	URL          string             `bson:"url" json:"url"`
	MimeType     string             `bson:"mimeType" json:"mimeType"`
	UploadedBy   primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	UploadedAt   time.Time          `bson:"uploadedAt" json:"uploadedAt"`
	OriginalName string             `bson:"originalName,omitempty" json:"originalName,omitempty"`
}

// TimelineEvent is an immutable entry in an issue's history.
type TimelineEvent struct {
	Action          string                 `bson:"action" json:"action"`
	PerformedBy     primitive.ObjectID     `bson:"performedBy" json:"performedBy"`
	PerformedByRole string                 `bson:"performedByRole" json:"performedByRole"`
	Comment         string                 `bson:"comment,omitempty" json:"comment,omitempty"`
	Timestamp       time.Time              `bson:"timestamp" json:"timestamp"`
	Metadata        map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type SLA struct {
	ReportedAt time.Time  `bson:"reportedAt" json:"reportedAt"`
	DueAt      *time.Time `bson:"dueAt,omitempty" json:"dueAt,omitempty"`
	ResolvedAt *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	IssueID              string              `bson:"issueId" json:"issueId"`
	Title                string              `bson:"title" json:"title"`
	Description          string              `bson:"description" json:"description"`
	Category             string              `bson:"category" json:"category"`
	Severity             Severity            `bson:"severity" json:"severity"`
	Location             Location            `bson:"location" json:"location"`
	ReportedBy           primitive.ObjectID  `bson:"reportedBy" json:"reportedBy"`
	AssignedDepartmentID *primitive.ObjectID `bson:"assignedDepartmentId,omitempty" json:"assignedDepartmentId,omitempty"`
	AssignedToAdminID    *primitive.ObjectID `bson:"assignedToAdminId,omitempty" json:"assignedToAdminId,omitempty"`
	Status               IssueStatus         `bson:"status" json:"status"`
	Media                []Media             `bson:"media,omitempty" json:"media,omitempty"`
	Timeline             []TimelineEvent     `bson:"timeline,omitempty" json:"timeline,omitempty"`
	Priority             int                 `bson:"priority" json:"priority"`
	SLA                  SLA                 `bson:"sla" json:"sla"`
	ResolutionProof      []Media             `bson:"resolutionProof,omitempty" json:"resolutionProof,omitempty"`
	AIClosureReportURL   string              `bson:"aiClosureReportUrl,omitempty" json:"aiClosureReportUrl,omitempty"`
	IsDeleted            bool                `bson:"isDeleted" json:"isDeleted"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IssueView is an Issue with its references expanded for API responses.
type IssueView struct {
	Issue
	ReportedBy         *UserRef       `json:"reportedBy"`
	AssignedToAdmin    *UserRef       `json:"assignedToAdminId,omitempty"`
	AssignedDepartment *DepartmentRef `json:"assignedDepartmentId,omitempty"`
}

type Department struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Code      string             `bson:"code" json:"code"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type DepartmentRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
	Code string             `json:"code"`
}

// IssueIDPattern matches human readable issue identifiers.
var IssueIDPattern = regexp.MustCompile(`^PP-\d{8}-\d{4}$`)

// DayKey formats the calendar day of t in its own location as YYYYMMDD.
func DayKey(t time.Time) string {
	return t.Format("20060102")
}

// FormatIssueID builds PP-YYYYMMDD-NNNN for the given day and daily sequence.
func FormatIssueID(day time.Time, seq int64) string {
	return fmt.Sprintf("PP-%s-%04d", DayKey(day), seq)
}
