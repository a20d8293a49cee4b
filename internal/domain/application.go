// File: internal/domain/application.go
package domain

import "time"

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationViewed    ApplicationStatus = "viewed"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// Application is one user's request to join a project. Unique per
// (project_id, applicant_id).
type Application struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	ProjectID    uint              `gorm:"uniqueIndex:uq_application_project_applicant;not null" json:"project_id"`
	ApplicantID  uint              `gorm:"uniqueIndex:uq_application_project_applicant;not null" json:"applicant_id"`
	ProposedRole string            `gorm:"size:50;not null" json:"proposed_role"`
	CoverLetter  string            `gorm:"type:text;not null" json:"cover_letter"`
	Status       ApplicationStatus `gorm:"size:20;index;default:pending" json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	RespondedAt  *time.Time        `json:"responded_at,omitempty"`
}

// Open reports whether the application can still be accepted or rejected.
func (a *Application) Open() bool {
	return a.Status == ApplicationPending || a.Status == ApplicationViewed
}

type CollaborationStatus string

const (
	CollaborationActive    CollaborationStatus = "active"
	CollaborationCompleted CollaborationStatus = "completed"
	CollaborationLeft      CollaborationStatus = "left"
	CollaborationRemoved   CollaborationStatus = "removed"
)

// Collaboration records an accepted applicant's membership in a project team.
type Collaboration struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	ProjectID      uint                `gorm:"uniqueIndex:uq_collaboration_project_collaborator;not null" json:"project_id"`
	CollaboratorID uint                `gorm:"uniqueIndex:uq_collaboration_project_collaborator;not null" json:"collaborator_id"`
	Role           string              `gorm:"size:50;not null" json:"role"`
	Status         CollaborationStatus `gorm:"size:20;default:active" json:"status"`
	JoinedAt       time.Time           `json:"joined_at"`
	EndedAt        *time.Time          `json:"ended_at,omitempty"`
}
