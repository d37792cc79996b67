package repository

import (
	"context"
	"errors"
	"fmt"

	"stadiumparking/internal/models"

	"gorm.io/gorm"
)

var ErrStadiumNotFound = errors.New("stadium not found")

// StadiumRepository reads and writes the stadium catalogue
type StadiumRepository interface {
	Create(ctx context.Context, stadium *models.Stadium) error
	Get(ctx context.Context, id models.ID) (*models.Stadium, error)
	List(ctx context.Context) ([]models.Stadium, error)
	Exists(ctx context.Context, id models.ID) (bool, error)
}

type stadiumRepository struct {
	db *gorm.DB
}

func NewStadiumRepository(db *gorm.DB) StadiumRepository { return &stadiumRepository{db: db} }

func (r *stadiumRepository) Create(ctx context.Context, stadium *models.Stadium) error {
	if err := r.db.WithContext(ctx).Create(stadium).Error; err != nil {
		return fmt.Errorf("create stadium: %w", err)
	}
	return nil
}

func (r *stadiumRepository) Get(ctx context.Context, id models.ID) (*models.Stadium, error) {
	var stadium models.Stadium
	if err := r.db.WithContext(ctx).Take(&stadium, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStadiumNotFound
		}
		return nil, fmt.Errorf("get stadium: %w", err)
	}
	return &stadium, nil
}

func (r *stadiumRepository) List(ctx context.Context) ([]models.Stadium, error) {
	var stadiums []models.Stadium
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&stadiums).Error; err != nil {
		return nil, fmt.Errorf("list stadiums: %w", err)
	}
	return stadiums, nil
}

func (r *stadiumRepository) Exists(ctx context.Context, id models.ID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Stadium{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check stadium: %w", err)
	}
	return n > 0, nil
}
