// File: internal/services/application_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/repository/application"
	"github.com/collabers/backend/internal/repository/collaboration"
	"github.com/collabers/backend/internal/repository/project"
)

var (
	ErrOwnProject          = errors.New("cannot apply to your own project")
	ErrAlreadyApplied      = errors.New("you have already applied to this project")
	ErrProjectClosed       = errors.New("project is not accepting applications")
	ErrApplicationClosed   = errors.New("application has already been decided")
	ErrNotProjectOwner     = errors.New("only the project owner can do this")
	ErrNotApplicant        = errors.New("only the applicant can do this")
	ErrAlreadyCollaborator = errors.New("user is already a collaborator on this project")
)

type ApplicationService struct {
	applications   application.ApplicationRepository
	collaborations collaboration.CollaborationRepository
	projects       project.ProjectRepository
	messaging      *MessagingService
	notifications  *NotificationService
	logger         Logger
	now            func() time.Time
}

func NewApplicationService(
	applications application.ApplicationRepository,
	collaborations collaboration.CollaborationRepository,
	projects project.ProjectRepository,
	messaging *MessagingService,
	notifications *NotificationService,
	logger Logger,
) *ApplicationService {
	return &ApplicationService{
		applications:   applications,
		collaborations: collaborations,
		projects:       projects,
		messaging:      messaging,
		notifications:  notifications,
		logger:         logger,
		now:            time.Now,
	}
}

// Apply submits an application to an open project and notifies its creator.
func (s *ApplicationService) Apply(ctx context.Context, applicantID, projectID uint, role, coverLetter string) (*domain.Application, error) {
	if role == "" {
		return nil, errors.New("proposed role is required")
	}
	if coverLetter == "" {
		return nil, errors.New("cover letter is required")
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.CreatorID == applicantID {
		return nil, ErrOwnProject
	}
	if !p.AcceptsApplications() {
		return nil, ErrProjectClosed
	}

	existing, err := s.applications.FindByProjectAndApplicant(ctx, projectID, applicantID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != domain.ApplicationWithdrawn {
		return nil, ErrAlreadyApplied
	}

	app := &domain.Application{
		ProjectID:    projectID,
		ApplicantID:  applicantID,
		ProposedRole: role,
		CoverLetter:  coverLetter,
		Status:       domain.ApplicationPending,
	}
	created, err := s.applications.Create(ctx, app)
	if err != nil {
		s.logger.Error("application creation failed", "error", err, "project_id", projectID, "applicant_id", applicantID)
		return nil, err
	}

	s.notifications.Notify(ctx, p.CreatorID, domain.NotificationNewApplication,
		"application", created.ID,
		fmt.Sprintf("New application for %q", p.Title))

	s.logger.Info("application submitted", "application_id", created.ID, "project_id", projectID, "applicant_id", applicantID)
	return created, nil
}

// ListForProject returns all applications on a project; owner only. Pending
// applications are flipped to viewed as a side effect.
func (s *ApplicationService) ListForProject(ctx context.Context, projectID, callerID uint) ([]domain.Application, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != callerID {
		return nil, ErrNotProjectOwner
	}

	apps, err := s.applications.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		if apps[i].Status == domain.ApplicationPending {
			apps[i].Status = domain.ApplicationViewed
			if err := s.applications.Update(ctx, &apps[i]); err != nil {
				s.logger.Warn("failed to mark application viewed", "error", err, "application_id", apps[i].ID)
			}
		}
	}
	return apps, nil
}

func (s *ApplicationService) ListForApplicant(ctx context.Context, applicantID uint) ([]domain.Application, error) {
	return s.applications.ListByApplicant(ctx, applicantID)
}

// Accept turns an open application into a collaboration, joins the applicant
// to the project's team chat and notifies them.
func (s *ApplicationService) Accept(ctx context.Context, applicationID, callerID uint) (*domain.Collaboration, error) {
	app, p, err := s.loadForDecision(ctx, applicationID, callerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.collaborations.FindByProjectAndUser(ctx, app.ProjectID, app.ApplicantID)
	if err != nil && !errors.Is(err, collaboration.ErrCollaborationNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == domain.CollaborationActive {
		return nil, ErrAlreadyCollaborator
	}

	now := s.now().UTC()
	app.Status = domain.ApplicationAccepted
	app.RespondedAt = &now
	if err := s.applications.Update(ctx, app); err != nil {
		s.logger.Error("failed to update accepted application", "error", err, "application_id", app.ID)
		return nil, err
	}

	collab, err := s.collaborations.Create(ctx, &domain.Collaboration{
		ProjectID:      app.ProjectID,
		CollaboratorID: app.ApplicantID,
		Role:           app.ProposedRole,
		Status:         domain.CollaborationActive,
		JoinedAt:       now,
	})
	if err != nil {
		s.logger.Error("failed to create collaboration", "error", err, "application_id", app.ID)
		return nil, err
	}

	if err := s.messaging.JoinTeamChat(ctx, app.ProjectID, p.CreatorID, app.ApplicantID); err != nil {
		s.logger.Warn("failed to add collaborator to team chat", "error", err, "project_id", app.ProjectID, "user_id", app.ApplicantID)
	}

	s.notifications.Notify(ctx, app.ApplicantID, domain.NotificationApplicationAccepted,
		"project", app.ProjectID,
		fmt.Sprintf("Your application to %q was accepted", p.Title))

	s.logger.Info("application accepted", "application_id", app.ID, "collaboration_id", collab.ID)
	return collab, nil
}

// Reject closes an open application and notifies the applicant.
func (s *ApplicationService) Reject(ctx context.Context, applicationID, callerID uint) (*domain.Application, error) {
	app, p, err := s.loadForDecision(ctx, applicationID, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	app.Status = domain.ApplicationRejected
	app.RespondedAt = &now
	if err := s.applications.Update(ctx, app); err != nil {
		s.logger.Error("failed to update rejected application", "error", err, "application_id", app.ID)
		return nil, err
	}

	s.notifications.Notify(ctx, app.ApplicantID, domain.NotificationApplicationRejected,
		"project", app.ProjectID,
		fmt.Sprintf("Your application to %q was not accepted", p.Title))

	s.logger.Info("application rejected", "application_id", app.ID)
	return app, nil
}

// Withdraw lets the applicant retract an undecided application.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, callerID uint) error {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.ApplicantID != callerID {
		return ErrNotApplicant
	}
	if !app.Open() {
		return ErrApplicationClosed
	}

	now := s.now().UTC()
	app.Status = domain.ApplicationWithdrawn
	app.RespondedAt = &now
	return s.applications.Update(ctx, app)
}

// Discuss opens a conversation about an application between the project owner
// and the applicant. Either side may start it.
func (s *ApplicationService) Discuss(ctx context.Context, applicationID, callerID uint) (*domain.Conversation, error) {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.FindByID(ctx, app.ProjectID)
	if err != nil {
		return nil, err
	}
	if callerID != p.CreatorID && callerID != app.ApplicantID {
		return nil, ErrNotProjectOwner
	}
	return s.messaging.StartApplicationDiscussion(ctx, app.ProjectID, p.CreatorID, app.ApplicantID)
}

// TeamRoster returns the active collaborators on a project.
func (s *ApplicationService) TeamRoster(ctx context.Context, projectID uint) ([]domain.Collaboration, error) {
	return s.collaborations.ListActiveByProject(ctx, projectID)
}

// Leave ends the caller's own active collaboration.
func (s *ApplicationService) Leave(ctx context.Context, projectID, callerID uint) error {
	return s.endCollaboration(ctx, projectID, callerID, domain.CollaborationLeft)
}

// RemoveCollaborator ends someone else's collaboration; project owner only.
func (s *ApplicationService) RemoveCollaborator(ctx context.Context, projectID, callerID, collaboratorID uint) error {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.CreatorID != callerID {
		return ErrNotProjectOwner
	}
	return s.endCollaboration(ctx, projectID, collaboratorID, domain.CollaborationRemoved)
}

func (s *ApplicationService) endCollaboration(ctx context.Context, projectID, userID uint, status domain.CollaborationStatus) error {
	collab, err := s.collaborations.FindByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if collab.Status != domain.CollaborationActive {
		return collaboration.ErrCollaborationNotFound
	}

	now := s.now().UTC()
	collab.Status = status
	collab.EndedAt = &now
	if err := s.collaborations.Update(ctx, collab); err != nil {
		s.logger.Error("failed to end collaboration", "error", err, "collaboration_id", collab.ID)
		return err
	}
	s.logger.Info("collaboration ended", "collaboration_id", collab.ID, "status", status)
	return nil
}

func (s *ApplicationService) loadForDecision(ctx context.Context, applicationID, callerID uint) (*domain.Application, *domain.ProjectPost, error) {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.projects.FindByID(ctx, app.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if p.CreatorID != callerID {
		return nil, nil, ErrNotProjectOwner
	}
	if !app.Open() {
		return nil, nil, ErrApplicationClosed
	}
	return app, p, nil
}
