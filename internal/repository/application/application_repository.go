// File: internal/repository/application/application_repository.go
package application

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/collabers/backend/internal/domain"
)

var ErrApplicationNotFound = errors.New("application not found")

// ApplicationRepository handles project application persistence.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) (*domain.Application, error)
	FindByID(ctx context.Context, id uint) (*domain.Application, error)
	FindByProjectAndApplicant(ctx context.Context, projectID, applicantID uint) (*domain.Application, error)
	ListByProject(ctx context.Context, projectID uint) ([]domain.Application, error)
	ListByApplicant(ctx context.Context, applicantID uint) ([]domain.Application, error)
	Update(ctx context.Context, app *domain.Application) error
}

type gormApplicationRepository struct {
	db *gorm.DB
}

func NewGormApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &gormApplicationRepository{db: db}
}

func (r *gormApplicationRepository) Create(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *gormApplicationRepository) FindByID(ctx context.Context, id uint) (*domain.Application, error) {
	var app domain.Application
	err := r.db.WithContext(ctx).First(&app, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *gormApplicationRepository) FindByProjectAndApplicant(ctx context.Context, projectID, applicantID uint) (*domain.Application, error) {
	var app domain.Application
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND applicant_id = ?", projectID, applicantID).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *gormApplicationRepository) ListByProject(ctx context.Context, projectID uint) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&apps).Error
	return apps, err
}

func (r *gormApplicationRepository) ListByApplicant(ctx context.Context, applicantID uint) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at desc").
		Find(&apps).Error
	return apps, err
}

func (r *gormApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	if app.ID == 0 {
		return errors.New("invalid application ID")
	}
	return r.db.WithContext(ctx).Save(app).Error
}
