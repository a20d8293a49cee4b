// File: internal/repository/collaboration/collaboration_repository.go
package collaboration

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/collabers/backend/internal/domain"
)

var ErrCollaborationNotFound = errors.New("collaboration not found")

// CollaborationRepository handles project team membership persistence.
type CollaborationRepository interface {
	Create(ctx context.Context, collab *domain.Collaboration) (*domain.Collaboration, error)
	FindByProjectAndUser(ctx context.Context, projectID, userID uint) (*domain.Collaboration, error)
	ListActiveByProject(ctx context.Context, projectID uint) ([]domain.Collaboration, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.Collaboration, error)
	CountActiveByProject(ctx context.Context, projectID uint) (int64, error)
	Update(ctx context.Context, collab *domain.Collaboration) error
}

type gormCollaborationRepository struct {
	db *gorm.DB
}

func NewGormCollaborationRepository(db *gorm.DB) CollaborationRepository {
	return &gormCollaborationRepository{db: db}
}

func (r *gormCollaborationRepository) Create(ctx context.Context, collab *domain.Collaboration) (*domain.Collaboration, error) {
	if err := r.db.WithContext(ctx).Create(collab).Error; err != nil {
		return nil, err
	}
	return collab, nil
}

func (r *gormCollaborationRepository) FindByProjectAndUser(ctx context.Context, projectID, userID uint) (*domain.Collaboration, error) {
	var collab domain.Collaboration
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND collaborator_id = ?", projectID, userID).
		First(&collab).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollaborationNotFound
		}
		return nil, err
	}
	return &collab, nil
}

func (r *gormCollaborationRepository) ListActiveByProject(ctx context.Context, projectID uint) ([]domain.Collaboration, error) {
	var collabs []domain.Collaboration
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, domain.CollaborationActive).
		Order("joined_at asc").
		Find(&collabs).Error
	return collabs, err
}

func (r *gormCollaborationRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Collaboration, error) {
	var collabs []domain.Collaboration
	err := r.db.WithContext(ctx).
		Where("collaborator_id = ?", userID).
		Order("joined_at desc").
		Find(&collabs).Error
	return collabs, err
}

func (r *gormCollaborationRepository) CountActiveByProject(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Collaboration{}).
		Where("project_id = ? AND status = ?", projectID, domain.CollaborationActive).
		Count(&count).Error
	return count, err
}

func (r *gormCollaborationRepository) Update(ctx context.Context, collab *domain.Collaboration) error {
	if collab.ID == 0 {
		return errors.New("invalid collaboration ID")
	}
	return r.db.WithContext(ctx).Save(collab).Error
}
