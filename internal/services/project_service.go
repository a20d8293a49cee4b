// File: internal/services/project_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/repository/project"
)

var (
	ErrProjectForbidden  = errors.New("you do not own this project")
	ErrBadStatusChange   = errors.New("status change not allowed from current status")
	ErrProjectNotVisible = errors.New("project not found")
)

type ProjectService struct {
	projects project.ProjectRepository
	markdown goldmark.Markdown
	logger   Logger
}

func NewProjectService(projects project.ProjectRepository, logger Logger) *ProjectService {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)
	return &ProjectService{
		projects: projects,
		markdown: md,
		logger:   logger,
	}
}

// Create persists a new project for the creator. Projects start as drafts
// unless the creator publishes immediately.
func (s *ProjectService) Create(ctx context.Context, creatorID uint, p *domain.ProjectPost) (*domain.ProjectPost, error) {
	if err := validateProject(p); err != nil {
		return nil, err
	}
	p.ID = 0
	p.CreatorID = creatorID
	p.ViewsCount = 0
	if p.Status == "" {
		p.Status = domain.ProjectDraft
	}
	if p.Status != domain.ProjectDraft && p.Status != domain.ProjectOpen {
		return nil, fmt.Errorf("new projects must be draft or open, got %q", p.Status)
	}
	if p.Visibility == "" {
		p.Visibility = domain.VisibilityPublic
	}

	created, err := s.projects.Create(ctx, p)
	if err != nil {
		s.logger.Error("project creation failed", "error", err, "creator_id", creatorID)
		return nil, err
	}
	s.logger.Info("project created", "project_id", created.ID, "creator_id", creatorID, "status", created.Status)
	return created, nil
}

// Get returns a project visible to the viewer and counts the view. Drafts and
// non-public statuses are visible to the creator only.
func (s *ProjectService) Get(ctx context.Context, id uint, viewerID uint) (*domain.ProjectPost, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visibleTo(p, viewerID) {
		return nil, ErrProjectNotVisible
	}

	if viewerID != p.CreatorID {
		if err := s.projects.IncrementViews(ctx, p.ID); err != nil {
			s.logger.Warn("failed to count project view", "error", err, "project_id", p.ID)
		} else {
			p.ViewsCount++
		}
	}
	return p, nil
}

// RenderDetailedDescription converts the project's markdown body to HTML.
func (s *ProjectService) RenderDetailedDescription(p *domain.ProjectPost) (string, error) {
	if p.DetailedDescription == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(p.DetailedDescription), &buf); err != nil {
		s.logger.Error("markdown rendering failed", "error", err, "project_id", p.ID)
		return "", fmt.Errorf("failed to render description: %w", err)
	}
	return buf.String(), nil
}

// List returns public open projects matching the filter. The creator filter
// additionally surfaces the caller's own drafts when they ask for their own.
func (s *ProjectService) List(ctx context.Context, filter project.Filter, viewerID uint) ([]domain.ProjectPost, int64, error) {
	if filter.CreatorID == 0 || filter.CreatorID != viewerID {
		// Public browsing never sees drafts or unlisted projects.
		filter.PublicOnly = true
	}
	return s.projects.List(ctx, filter)
}

// Update lets the creator edit project fields. Status is changed through
// ChangeStatus, not here.
func (s *ProjectService) Update(ctx context.Context, id, callerID uint, updated *domain.ProjectPost) (*domain.ProjectPost, error) {
	current, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CreatorID != callerID {
		return nil, ErrProjectForbidden
	}
	if err := validateProject(updated); err != nil {
		return nil, err
	}

	updated.ID = current.ID
	updated.CreatorID = current.CreatorID
	updated.Status = current.Status
	updated.ViewsCount = current.ViewsCount
	updated.CreatedAt = current.CreatedAt
	if err := s.projects.Update(ctx, updated); err != nil {
		s.logger.Error("project update failed", "error", err, "project_id", id)
		return nil, err
	}
	return updated, nil
}

// ChangeStatus moves the project along its allowed status transitions.
func (s *ProjectService) ChangeStatus(ctx context.Context, id, callerID uint, target domain.ProjectStatus) (*domain.ProjectPost, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != callerID {
		return nil, ErrProjectForbidden
	}
	if !p.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadStatusChange, p.Status, target)
	}

	p.Status = target
	if err := s.projects.Update(ctx, p); err != nil {
		s.logger.Error("project status update failed", "error", err, "project_id", id)
		return nil, err
	}
	s.logger.Info("project status changed", "project_id", id, "status", target)
	return p, nil
}

// Delete removes the project. Creator only.
func (s *ProjectService) Delete(ctx context.Context, id, callerID uint) error {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p.CreatorID != callerID {
		return ErrProjectForbidden
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		s.logger.Error("project deletion failed", "error", err, "project_id", id)
		return err
	}
	s.logger.Info("project deleted", "project_id", id, "creator_id", callerID)
	return nil
}

func (s *ProjectService) visibleTo(p *domain.ProjectPost, viewerID uint) bool {
	if p.CreatorID == viewerID {
		return true
	}
	switch p.Status {
	case domain.ProjectDraft, domain.ProjectCancelled:
		return false
	}
	return true
}

func validateProject(p *domain.ProjectPost) error {
	if p.Title == "" || len(p.Title) > 100 {
		return errors.New("title is required and must be at most 100 characters")
	}
	if p.Description == "" {
		return errors.New("description is required")
	}
	if len(p.RolesNeeded) == 0 {
		return errors.New("at least one needed role is required")
	}
	if p.TeamSize < 1 {
		return errors.New("team size must be at least 1")
	}
	switch p.Category {
	case domain.CategoryCoursework, domain.CategoryHackathon, domain.CategoryStartup,
		domain.CategoryLearning, domain.CategoryOpenSource:
	default:
		return fmt.Errorf("invalid category %q", p.Category)
	}
	switch p.Duration {
	case domain.DurationUnderOneMonth, domain.DurationOneToThree,
		domain.DurationThreeToSix, domain.DurationOngoing:
	default:
		return fmt.Errorf("invalid duration %q", p.Duration)
	}
	return nil
}
