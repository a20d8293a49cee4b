// File: internal/repository/project/project_repository.go
package project

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/collabers/backend/internal/domain"
)

var ErrProjectNotFound = errors.New("project not found")

// Filter narrows project listings.
type Filter struct {
	Category   domain.ProjectCategory
	Status     domain.ProjectStatus
	CreatorID  uint
	Search     string
	PublicOnly bool
	Page       int
	Limit      int
}

// ProjectRepository handles project post persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.ProjectPost) (*domain.ProjectPost, error)
	FindByID(ctx context.Context, id uint) (*domain.ProjectPost, error)
	Update(ctx context.Context, project *domain.ProjectPost) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter Filter) ([]domain.ProjectPost, int64, error)
	IncrementViews(ctx context.Context, id uint) error
}

type gormProjectRepository struct {
	db *gorm.DB
}

func NewGormProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) Create(ctx context.Context, project *domain.ProjectPost) (*domain.ProjectPost, error) {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (r *gormProjectRepository) FindByID(ctx context.Context, id uint) (*domain.ProjectPost, error) {
	var project domain.ProjectPost
	err := r.db.WithContext(ctx).First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *gormProjectRepository) Update(ctx context.Context, project *domain.ProjectPost) error {
	if project.ID == 0 {
		return errors.New("invalid project ID")
	}
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *gormProjectRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.ProjectPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *gormProjectRepository) List(ctx context.Context, filter Filter) ([]domain.ProjectPost, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	query := r.db.WithContext(ctx).Model(&domain.ProjectPost{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.PublicOnly {
		query = query.Where("visibility = ? AND status NOT IN ?",
			domain.VisibilityPublic, []domain.ProjectStatus{domain.ProjectDraft, domain.ProjectCancelled})
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []domain.ProjectPost
	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *gormProjectRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&domain.ProjectPost{}).
		Where("id = ?", id).
		Update("views_count", gorm.Expr("views_count + 1")).Error
}
