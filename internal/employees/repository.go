package employees

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// Repository wires together employee account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts an employee row.
func (r *Repository) Create(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

// FindByID loads one employee.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByEmail loads an employee by email, case-insensitive.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		First(&employee, "LOWER(email) = ?", strings.ToLower(email)).
		Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// List returns employees, optionally narrowed to one role, newest first.
func (r *Repository) List(ctx context.Context, role *enums.EmployeeRole) ([]models.Employee, error) {
	qb := r.db.WithContext(ctx).Model(&models.Employee{})
	if role != nil {
		qb = qb.Where("role = ?", *role)
	}
	var rows []models.Employee
	err := qb.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// Update persists changes to an employee row.
func (r *Repository) Update(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if err := r.db.WithContext(ctx).Save(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

// Delete removes an employee row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Employee{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
