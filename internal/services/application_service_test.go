// File: internal/services/application_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/collabers/backend/internal/domain"
	applicationrepo "github.com/collabers/backend/internal/repository/application"
	collaborationrepo "github.com/collabers/backend/internal/repository/collaboration"
	conversationrepo "github.com/collabers/backend/internal/repository/conversation"
	messagerepo "github.com/collabers/backend/internal/repository/message"
	notificationrepo "github.com/collabers/backend/internal/repository/notification"
	projectrepo "github.com/collabers/backend/internal/repository/project"
)

type appTestEnv struct {
	apps          *ApplicationService
	projects      *ProjectService
	notifications *NotificationService
	messaging     *MessagingService
}

func newAppTestEnv(t *testing.T) *appTestEnv {
	t.Helper()
	db := newTestDB(t)
	logger := &NoOpLogger{}

	notifications := NewNotificationService(notificationrepo.NewGormNotificationRepository(db), logger)
	messaging := NewMessagingService(
		conversationrepo.NewGormConversationRepository(db),
		messagerepo.NewGormMessageRepository(db),
		notifications,
		logger,
	)
	projRepo := projectrepo.NewGormProjectRepository(db)
	apps := NewApplicationService(
		applicationrepo.NewGormApplicationRepository(db),
		collaborationrepo.NewGormCollaborationRepository(db),
		projRepo,
		messaging,
		notifications,
		logger,
	)
	return &appTestEnv{
		apps:          apps,
		projects:      NewProjectService(projRepo, logger),
		notifications: notifications,
		messaging:     messaging,
	}
}

const (
	ownerID     = uint(1)
	applicantID = uint(2)
)

func (env *appTestEnv) openProject(t *testing.T) *domain.ProjectPost {
	t.Helper()
	p, err := env.projects.Create(context.Background(), ownerID, validProject())
	if err != nil {
		t.Fatalf("Create project error: %v", err)
	}
	return p
}

func TestApplyRules(t *testing.T) {
	env := newAppTestEnv(t)
	ctx := context.Background()
	p := env.openProject(t)

	if _, err := env.apps.Apply(ctx, ownerID, p.ID, "backend", "me me me"); !errors.Is(err, ErrOwnProject) {
		t.Fatalf("expected ErrOwnProject, got %v", err)
	}

	app, err := env.apps.Apply(ctx, applicantID, p.ID, "backend", "I commute too.")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if app.Status != domain.ApplicationPending {
		t.Fatalf("expected pending status, got %q", app.Status)
	}

	if _, err := env.apps.Apply(ctx, applicantID, p.ID, "backend", "again"); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}

	// The creator is told about the new application.
	notes, err := env.notifications.List(ctx, ownerID, true, 0, 0)
	if err != nil {
		t.Fatalf("List notifications error: %v", err)
	}
	if len(notes) != 1 || notes[0].Type != domain.NotificationNewApplication {
		t.Fatalf("expected one new-application notification, got %+v", notes)
	}
}

func TestApplyClosedProject(t *testing.T) {
	env := newAppTestEnv(t)
	ctx := context.Background()
	p := env.openProject(t)

	if _, err := env.projects.ChangeStatus(ctx, p.ID, ownerID, domain.ProjectInProgress); err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if _, err := env.apps.Apply(ctx, applicantID, p.ID, "backend", "late"); !errors.Is(err, ErrProjectClosed) {
		t.Fatalf("expected ErrProjectClosed, got %v", err)
	}
}

func TestAcceptCreatesCollaborationAndTeamChat(t *testing.T) {
	env := newAppTestEnv(t)
	ctx := context.Background()
	p := env.openProject(t)

	app, err := env.apps.Apply(ctx, applicantID, p.ID, "backend", "I commute too.")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	if _, err := env.apps.Accept(ctx, app.ID, applicantID); !errors.Is(err, ErrNotProjectOwner) {
		t.Fatalf("expected ErrNotProjectOwner, got %v", err)
	}

	collab, err := env.apps.Accept(ctx, app.ID, ownerID)
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if collab.Status != domain.CollaborationActive || collab.CollaboratorID != applicantID {
		t.Fatalf("unexpected collaboration: %+v", collab)
	}

	roster, err := env.apps.TeamRoster(ctx, p.ID)
	if err != nil {
		t.Fatalf("TeamRoster error: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("expected 1 active collaborator, got %d", len(roster))
	}

	// Accepting is terminal for the application.
	if _, err := env.apps.Accept(ctx, app.ID, ownerID); !errors.Is(err, ErrApplicationClosed) {
		t.Fatalf("expected ErrApplicationClosed on second accept, got %v", err)
	}

	// The applicant now shares a team conversation with the owner.
	convs, err := env.messaging.ListConversations(ctx, applicantID)
	if err != nil {
		t.Fatalf("ListConversations error: %v", err)
	}
	if len(convs) != 1 || convs[0].Type != domain.ConversationTeamChat {
		t.Fatalf("expected one team conversation, got %+v", convs)
	}
}

func TestWithdrawAndReapply(t *testing.T) {
	env := newAppTestEnv(t)
	ctx := context.Background()
	p := env.openProject(t)

	app, err := env.apps.Apply(ctx, applicantID, p.ID, "backend", "first try")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	if err := env.apps.Withdraw(ctx, app.ID, ownerID); !errors.Is(err, ErrNotApplicant) {
		t.Fatalf("expected ErrNotApplicant, got %v", err)
	}
	if err := env.apps.Withdraw(ctx, app.ID, applicantID); err != nil {
		t.Fatalf("Withdraw error: %v", err)
	}

	// A withdrawn application does not block a fresh one.
	if _, err := env.apps.Apply(ctx, applicantID, p.ID, "backend", "second try"); err != nil {
		t.Fatalf("reapply after withdraw should work, got %v", err)
	}
}

func TestLeaveAndRemoveCollaborator(t *testing.T) {
	env := newAppTestEnv(t)
	ctx := context.Background()
	p := env.openProject(t)

	app, err := env.apps.Apply(ctx, applicantID, p.ID, "backend", "hello")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if _, err := env.apps.Accept(ctx, app.ID, ownerID); err != nil {
		t.Fatalf("Accept error: %v", err)
	}

	if err := env.apps.RemoveCollaborator(ctx, p.ID, applicantID, applicantID); !errors.Is(err, ErrNotProjectOwner) {
		t.Fatalf("expected ErrNotProjectOwner, got %v", err)
	}

	if err := env.apps.Leave(ctx, p.ID, applicantID); err != nil {
		t.Fatalf("Leave error: %v", err)
	}
	roster, err := env.apps.TeamRoster(ctx, p.ID)
	if err != nil {
		t.Fatalf("TeamRoster error: %v", err)
	}
	if len(roster) != 0 {
		t.Fatalf("expected empty roster after leaving, got %d", len(roster))
	}
}
