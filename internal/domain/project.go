// File: internal/domain/project.go
package domain

import "time"

type ProjectCategory string

const (
	CategoryCoursework ProjectCategory = "coursework"
	CategoryHackathon  ProjectCategory = "hackathon"
	CategoryStartup    ProjectCategory = "startup"
	CategoryLearning   ProjectCategory = "learning"
	CategoryOpenSource ProjectCategory = "open_source"
)

type ProjectDuration string

const (
	DurationUnderOneMonth ProjectDuration = "less_than_1_month"
	DurationOneToThree    ProjectDuration = "1_to_3_months"
	DurationThreeToSix    ProjectDuration = "3_to_6_months"
	DurationOngoing       ProjectDuration = "ongoing"
)

type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectFilled     ProjectStatus = "filled"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type ProjectVisibility string

const (
	VisibilityPublic   ProjectVisibility = "public"
	VisibilityUnlisted ProjectVisibility = "unlisted"
)

// ProjectPost is a project looking for collaborators.
type ProjectPost struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	CreatorID           uint              `gorm:"index;not null" json:"creator_id"`
	Title               string            `gorm:"size:100;not null" json:"title"`
	Description         string            `gorm:"type:text;not null" json:"description"`
	DetailedDescription string            `gorm:"type:text" json:"detailed_description"`
	Category            ProjectCategory   `gorm:"size:30;index;not null" json:"category"`
	TechStack           []string          `gorm:"serializer:json" json:"tech_stack"`
	RolesNeeded         []string          `gorm:"serializer:json;not null" json:"roles_needed"`
	CommitmentHours     string            `gorm:"size:50;not null" json:"commitment_hours"`
	Duration            ProjectDuration   `gorm:"size:30;not null" json:"duration"`
	TeamSize            int               `gorm:"not null" json:"team_size"`
	Status              ProjectStatus     `gorm:"size:20;index;default:draft" json:"status"`
	Visibility          ProjectVisibility `gorm:"size:20;default:public" json:"visibility"`
	Deadline            *time.Time        `json:"deadline,omitempty"`
	ViewsCount          int               `gorm:"default:0" json:"views_count"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// projectStatusTransitions lists the allowed status changes.
var projectStatusTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectDraft:      {ProjectOpen, ProjectCancelled},
	ProjectOpen:       {ProjectInProgress, ProjectFilled, ProjectCancelled},
	ProjectInProgress: {ProjectFilled, ProjectCompleted, ProjectCancelled},
	ProjectFilled:     {ProjectInProgress, ProjectCompleted, ProjectCancelled},
}

// CanTransitionTo reports whether the project may move to the target status.
func (p *ProjectPost) CanTransitionTo(target ProjectStatus) bool {
	for _, allowed := range projectStatusTransitions[p.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AcceptsApplications reports whether new applications may be submitted.
func (p *ProjectPost) AcceptsApplications() bool {
	return p.Status == ProjectOpen
}
