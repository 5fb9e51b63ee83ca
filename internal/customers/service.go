package customers

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
	"github.com/stridewear/stridewear-backend/pkg/logger"
)

// Service covers customer accounts, sessions, and the address book.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetProfile(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error)
	UpdateProfile(ctx context.Context, customerID uuid.UUID, input UpdateProfileInput) (*CustomerDTO, error)
	CreateAddress(ctx context.Context, customerID uuid.UUID, input AddressInput) (*AddressDTO, error)
	UpdateAddress(ctx context.Context, customerID, addressID uuid.UUID, input AddressInput) (*AddressDTO, error)
	DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) error
	ListAddresses(ctx context.Context, customerID uuid.UUID) ([]AddressDTO, error)
	SetDefaultAddress(ctx context.Context, customerID, addressID uuid.UUID) error
}

// RegisterInput creates a new customer account.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
}

// LoginInput authenticates an existing customer. ClientIP feeds the
// per-address login rate limit.
type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

// UpdateProfileInput carries mutable profile fields. Nil means keep.
type UpdateProfileInput struct {
	Name      *string
	Phone     *string
	AvatarURL *string
}

// AddressInput creates or replaces a shipping address.
type AddressInput struct {
	Receiver   string
	Phone      string
	ProvinceID int
	DistrictID int
	WardCode   string
	Detail     string
	IsDefault  bool
}

type loginLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	tx       txRunner
	limiter  loginLimiter
	jwtCfg   config.JWTConfig
	rateCfg  config.AuthRateLimitConfig
	logg     *logger.Logger
	now      func() time.Time
	hashCost int
}

// NewService constructs a customer service instance.
func NewService(
	repo *Repository,
	tx txRunner,
	limiter loginLimiter,
	jwtCfg config.JWTConfig,
	rateCfg config.AuthRateLimitConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("login limiter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		limiter:  limiter,
		jwtCfg:   jwtCfg,
		rateCfg:  rateCfg,
		logg:     logg,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}, nil
}

// Register creates an account and returns a session for it.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
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

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	customer, err := s.repo.Create(ctx, &models.Customer{
		Name:         name,
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer")
	}

	s.logg.Info(s.logg.WithCustomerID(ctx, customer.ID.String()), "customer registered")
	return s.session(customer)
}

// Login checks the rate limits, verifies the password, and mints a token.
func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.checkLoginLimit(ctx, "login:email:"+email, int64(s.rateCfg.LoginEmailLimit)); err != nil {
		return nil, err
	}
	if ip := strings.TrimSpace(input.ClientIP); ip != "" {
		if err := s.checkLoginLimit(ctx, "login:ip:"+ip, int64(s.rateCfg.LoginIPLimit)); err != nil {
			return nil, err
		}
	}

	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(input.Password)) != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	return s.session(customer)
}

func (s *service) checkLoginLimit(ctx context.Context, scope string, limit int64) error {
	if limit <= 0 {
		return nil
	}
	allowed, count, err := s.limiter.FixedWindowAllow(ctx, scope, limit, s.rateCfg.LoginWindow)
	if err != nil {
		// An unreachable limiter must not lock everyone out.
		s.logg.Warn(ctx, "redis: login rate limiter unavailable")
		return nil
	}
	if !allowed {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"scope": scope, "count": count}), "login rate limit hit")
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts, try again later")
	}
	return nil
}

func (s *service) session(customer *models.Customer) (*AuthResult, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		SubjectID: customer.ID,
		Role:      enums.ActorRoleCustomer,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	return &AuthResult{AccessToken: token, Customer: toCustomerDTO(customer)}, nil
}

// GetProfile returns the customer's own profile.
func (s *service) GetProfile(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.loadCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	dto := toCustomerDTO(customer)
	return &dto, nil
}

// UpdateProfile applies the provided fields and returns the new profile.
func (s *service) UpdateProfile(ctx context.Context, customerID uuid.UUID, input UpdateProfileInput) (*CustomerDTO, error) {
	customer, err := s.loadCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		customer.Name = name
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.AvatarURL != nil {
		customer.AvatarURL = input.AvatarURL
	}

	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
	}
	dto := toCustomerDTO(updated)
	return &dto, nil
}

// CreateAddress adds a shipping address. The first address becomes the
// default automatically.
func (s *service) CreateAddress(ctx context.Context, customerID uuid.UUID, input AddressInput) (*AddressDTO, error) {
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListAddresses(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list addresses")
	}

	address := &models.CustomerAddress{
		CustomerID: customerID,
		Receiver:   strings.TrimSpace(input.Receiver),
		Phone:      strings.TrimSpace(input.Phone),
		ProvinceID: input.ProvinceID,
		DistrictID: input.DistrictID,
		WardCode:   strings.TrimSpace(input.WardCode),
		Detail:     strings.TrimSpace(input.Detail),
		IsDefault:  input.IsDefault || len(existing) == 0,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if address.IsDefault {
			if err := repo.ClearDefault(ctx, customerID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear default address")
			}
		}
		if _, err := repo.CreateAddress(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toAddressDTO(address)
	return &dto, nil
}

// UpdateAddress replaces the fields of one of the customer's addresses.
func (s *service) UpdateAddress(ctx context.Context, customerID, addressID uuid.UUID, input AddressInput) (*AddressDTO, error) {
	if err := validateAddress(input); err != nil {
		return nil, err
	}
	address, err := s.loadOwnedAddress(ctx, customerID, addressID)
	if err != nil {
		return nil, err
	}

	address.Receiver = strings.TrimSpace(input.Receiver)
	address.Phone = strings.TrimSpace(input.Phone)
	address.ProvinceID = input.ProvinceID
	address.DistrictID = input.DistrictID
	address.WardCode = strings.TrimSpace(input.WardCode)
	address.Detail = strings.TrimSpace(input.Detail)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault && !address.IsDefault {
			if err := repo.ClearDefault(ctx, customerID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear default address")
			}
			address.IsDefault = true
		}
		if _, err := repo.UpdateAddress(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toAddressDTO(address)
	return &dto, nil
}

// DeleteAddress removes one of the customer's addresses.
func (s *service) DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) error {
	address, err := s.loadOwnedAddress(ctx, customerID, addressID)
	if err != nil {
		return err
	}
	if _, err := s.repo.DeleteAddress(ctx, address.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete address")
	}
	return nil
}

// ListAddresses returns the customer's address book, default first.
func (s *service) ListAddresses(ctx context.Context, customerID uuid.UUID) ([]AddressDTO, error) {
	rows, err := s.repo.ListAddresses(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list addresses")
	}
	return toAddressDTOs(rows), nil
}

// SetDefaultAddress moves the default flag to the given address.
func (s *service) SetDefaultAddress(ctx context.Context, customerID, addressID uuid.UUID) error {
	address, err := s.loadOwnedAddress(ctx, customerID, addressID)
	if err != nil {
		return err
	}
	if address.IsDefault {
		return nil
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearDefault(ctx, customerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear default address")
		}
		if err := repo.SetDefault(ctx, address.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set default address")
		}
		return nil
	})
}

func (s *service) loadCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	return customer, nil
}

func (s *service) loadOwnedAddress(ctx context.Context, customerID, addressID uuid.UUID) (*models.CustomerAddress, error) {
	address, err := s.repo.FindAddressByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load address")
	}
	if address.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to customer")
	}
	return address, nil
}

func validateAddress(input AddressInput) error {
	if strings.TrimSpace(input.Receiver) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "receiver is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if input.ProvinceID <= 0 || input.DistrictID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "province and district are required")
	}
	if strings.TrimSpace(input.WardCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "ward code is required")
	}
	if strings.TrimSpace(input.Detail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address detail is required")
	}
	return nil
}
