package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/auth"
	"github.com/stridewear/stridewear-backend/pkg/config"
	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
)

// Service covers staff and shipper accounts.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Create(ctx context.Context, input CreateInput) (*EmployeeDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error)
	List(ctx context.Context, role *enums.EmployeeRole) ([]EmployeeDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*EmployeeDTO, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

// LoginInput authenticates an employee.
type LoginInput struct {
	Email    string
	Password string
}

// CreateInput provisions a staff or shipper account.
type CreateInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
	Role     enums.EmployeeRole
}

// UpdateInput carries mutable employee fields. Nil means keep.
type UpdateInput struct {
	Name  *string
	Phone *string
	Role  *enums.EmployeeRole
}

type service struct {
	repo   *Repository
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// NewService constructs an employee service instance.
func NewService(repo *Repository, jwtCfg config.JWTConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	return &service{repo: repo, jwtCfg: jwtCfg, now: time.Now}, nil
}

func actorRoleFor(role enums.EmployeeRole) (enums.ActorRole, error) {
	switch role {
	case enums.EmployeeRoleStaff:
		return enums.ActorRoleStaff, nil
	case enums.EmployeeRoleShipper:
		return enums.ActorRoleShipper, nil
	default:
		return "", fmt.Errorf("unknown employee role %q", role)
	}
}

// Login verifies the password and mints a token carrying the employee's role.
func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	employee, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load employee")
	}
	if bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(input.Password)) != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	role, err := actorRoleFor(employee.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving actor role")
	}
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		SubjectID: employee.ID,
		Role:      role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	return &AuthResult{AccessToken: token, Employee: toDTO(employee)}, nil
}

// Create provisions a new employee account.
func (s *service) Create(ctx context.Context, input CreateInput) (*EmployeeDTO, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if _, err := actorRoleFor(input.Role); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be staff or shipper")
	}

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	employee, err := s.repo.Create(ctx, &models.Employee{
		Name:         name,
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: string(hash),
		Role:         input.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert employee")
	}
	dto := toDTO(employee)
	return &dto, nil
}

// Get returns one employee.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error) {
	employee, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(employee)
	return &dto, nil
}

// List returns employees, optionally narrowed to one role.
func (s *service) List(ctx context.Context, role *enums.EmployeeRole) ([]EmployeeDTO, error) {
	if role != nil {
		if _, err := actorRoleFor(*role); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be staff or shipper")
		}
	}
	rows, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list employees")
	}
	out := make([]EmployeeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return out, nil
}

// Update applies the provided fields to an employee account.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*EmployeeDTO, error) {
	employee, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		employee.Name = name
	}
	if input.Phone != nil {
		employee.Phone = input.Phone
	}
	if input.Role != nil {
		if _, err := actorRoleFor(*input.Role); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be staff or shipper")
		}
		employee.Role = *input.Role
	}

	updated, err := s.repo.Update(ctx, employee)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update employee")
	}
	dto := toDTO(updated)
	return &dto, nil
}

// Delete removes an employee account. Self-deletion is rejected.
func (s *service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete your own account")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete employee")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load employee")
	}
	return employee, nil
}
