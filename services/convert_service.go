package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

// Nigerian mobile numbers: 11 digits starting 0
var phonePattern = regexp.MustCompile(`^0\d{10}$`)

// ConvertFilter narrows the convert listing
type ConvertFilter struct {
	Stage            models.ConvertStage
	Source           models.ConvertSource
	AssignedWorkerID uint
	Search           string
}

// CreateConvertRequest carries the fields accepted on registration
type CreateConvertRequest struct {
	FirstName        string               `json:"first_name" binding:"required" example:"Chinedu"`
	LastName         string               `json:"last_name" binding:"required" example:"Okafor"`
	Phone            string               `json:"phone" binding:"required" example:"08031234567"`
	Email            string               `json:"email" binding:"omitempty,email" example:"chinedu@example.com"`
	City             string               `json:"city" example:"Lagos"`
	State            string               `json:"state" example:"Lagos"`
	Occupation       string               `json:"occupation" example:"Trader"`
	Notes            string               `json:"notes"`
	Source           models.ConvertSource `json:"source" example:"service"`
	AssignedWorkerID *uint                `json:"assigned_worker_id"`
}

// UpdateConvertRequest carries the mutable profile fields. Stage is absent
// on purpose: stage moves only through the transition endpoint.
type UpdateConvertRequest struct {
	FirstName        *string               `json:"first_name"`
	LastName         *string               `json:"last_name"`
	Phone            *string               `json:"phone"`
	Email            *string               `json:"email"`
	City             *string               `json:"city"`
	State            *string               `json:"state"`
	Occupation       *string               `json:"occupation"`
	Notes            *string               `json:"notes"`
	Source           *models.ConvertSource `json:"source"`
	AssignedWorkerID *uint                 `json:"assigned_worker_id"`
}

// InterfaceConvertService defines the convert registry interface
type InterfaceConvertService interface {
	GetAllConverts(ctx context.Context, filter ConvertFilter, page, pageSize int) ([]models.Convert, int64, error)
	GetConvertByID(ctx context.Context, id uint) (*models.Convert, error)
	CreateConvert(ctx context.Context, req *CreateConvertRequest) (*models.Convert, error)
	UpdateConvert(ctx context.Context, id uint, req *UpdateConvertRequest) (*models.Convert, error)
}

// ConvertService manages convert profile records
type ConvertService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewConvertService creates a new convert service
func NewConvertService(db *gorm.DB, cfg *config.Config) InterfaceConvertService {
	return &ConvertService{DB: db, Config: cfg}
}

// 1 GetAllConverts returns a filtered, paginated convert listing
func (s *ConvertService) GetAllConverts(ctx context.Context, filter ConvertFilter, page, pageSize int) ([]models.Convert, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.Convert{})

	if filter.Stage != "" {
		if !models.ValidStage(filter.Stage) {
			return nil, 0, fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, filter.Stage)
		}
		db = db.Where("stage = ?", filter.Stage)
	}
	if filter.Source != "" {
		db = db.Where("source = ?", filter.Source)
	}
	if filter.AssignedWorkerID != 0 {
		db = db.Where("assigned_worker_id = ?", filter.AssignedWorkerID)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		db = db.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ?",
			term, term, term,
		)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var converts []models.Convert
	err := db.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&converts).Error
	if err != nil {
		return nil, 0, err
	}
	return converts, total, nil
}

// 2 GetConvertByID returns one convert with its recent relations
func (s *ConvertService) GetConvertByID(ctx context.Context, id uint) (*models.Convert, error) {
	var convert models.Convert
	err := s.DB.WithContext(ctx).
		Preload("AssignedWorker").
		First(&convert, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: convert %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &convert, nil
}

// 3 CreateConvert registers a new convert in the entry stage
func (s *ConvertService) CreateConvert(ctx context.Context, req *CreateConvertRequest) (*models.Convert, error) {
	if !phonePattern.MatchString(req.Phone) {
		return nil, fmt.Errorf("%w: phone must be 11 digits starting with 0", ErrInvalidState)
	}
	source := req.Source
	if source == "" {
		source = models.SourceService
	}
	if !models.ValidSource(source) {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidState, source)
	}

	convert := &models.Convert{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Phone:            req.Phone,
		Email:            req.Email,
		City:             req.City,
		State:            req.State,
		Occupation:       req.Occupation,
		Notes:            req.Notes,
		Stage:            models.StageNew,
		Source:           source,
		AssignedWorkerID: req.AssignedWorkerID,
	}
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Create(convert).Error
	})
	if err != nil {
		return nil, err
	}
	return convert, nil
}

// 4 UpdateConvert applies a partial profile update
func (s *ConvertService) UpdateConvert(ctx context.Context, id uint, req *UpdateConvertRequest) (*models.Convert, error) {
	if req.Phone != nil && !phonePattern.MatchString(*req.Phone) {
		return nil, fmt.Errorf("%w: phone must be 11 digits starting with 0", ErrInvalidState)
	}
	if req.Source != nil && !models.ValidSource(*req.Source) {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidState, *req.Source)
	}

	unlock := convertLocks.Lock(id)
	defer unlock()

	var convert models.Convert
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&convert, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: convert %d", ErrNotFound, id)
				}
				return err
			}

			if req.FirstName != nil {
				convert.FirstName = strings.TrimSpace(*req.FirstName)
			}
			if req.LastName != nil {
				convert.LastName = strings.TrimSpace(*req.LastName)
			}
			if req.Phone != nil {
				convert.Phone = *req.Phone
			}
			if req.Email != nil {
				convert.Email = *req.Email
			}
			if req.City != nil {
				convert.City = *req.City
			}
			if req.State != nil {
				convert.State = *req.State
			}
			if req.Occupation != nil {
				convert.Occupation = *req.Occupation
			}
			if req.Notes != nil {
				convert.Notes = *req.Notes
			}
			if req.Source != nil {
				convert.Source = *req.Source
			}
			if req.AssignedWorkerID != nil {
				convert.AssignedWorkerID = req.AssignedWorkerID
			}
			return tx.Save(&convert).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &convert, nil
}
