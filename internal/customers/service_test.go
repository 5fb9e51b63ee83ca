package customers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stridewear/stridewear-backend/pkg/auth"
	"github.com/stridewear/stridewear-backend/pkg/config"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/logger"
	"github.com/stridewear/stridewear-backend/pkg/migrate"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := migrate.Run(context.Background(), conn); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return conn
}

type gormTx struct {
	db *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type stubLimiter struct {
	counts map[string]int64
	err    error
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{counts: map[string]int64{}}
}

func (s *stubLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if s.err != nil {
		return false, 0, s.err
	}
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-1234",
		Issuer:            "stridewear-test",
		ExpirationMinutes: 30,
	}
}

func newCustomerService(t *testing.T, limiter *stubLimiter) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(
		NewRepository(conn),
		gormTx{db: conn},
		limiter,
		testJWTConfig(),
		config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginEmailLimit: 3,
			LoginIPLimit:    5,
		},
		logg,
	)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc, conn
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func registerCustomer(t *testing.T, svc Service, email string) *AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Minh Nguyen",
		Email:    email,
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return result
}

func TestRegisterMintsCustomerSession(t *testing.T) {
	svc, _ := newCustomerService(t, newStubLimiter())

	result := registerCustomer(t, svc, "Minh.Nguyen@Example.COM")
	if result.Customer.Email != "minh.nguyen@example.com" {
		t.Fatalf("expected normalized email, got %q", result.Customer.Email)
	}
	if result.AccessToken == "" {
		t.Fatalf("expected access token")
	}

	claims, err := auth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	if err != nil {
		t.Fatalf("minted token did not parse: %v", err)
	}
	if claims.SubjectID != result.Customer.ID {
		t.Fatalf("token subject %s does not match customer %s", claims.SubjectID, result.Customer.ID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newCustomerService(t, newStubLimiter())
	registerCustomer(t, svc, "minh@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Someone Else",
		Email:    "MINH@example.com",
		Password: "another password",
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, _ := newCustomerService(t, newStubLimiter())
	registerCustomer(t, svc, "minh@example.com")
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{
		Email:    "minh@example.com",
		Password: "correct horse battery",
		ClientIP: "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatalf("expected access token")
	}

	_, err = svc.Login(ctx, LoginInput{
		Email:    "minh@example.com",
		Password: "wrong password",
		ClientIP: "203.0.113.7",
	})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	svc, _ := newCustomerService(t, newStubLimiter())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever password",
	})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRateLimitPerEmail(t *testing.T) {
	limiter := newStubLimiter()
	svc, _ := newCustomerService(t, limiter)
	registerCustomer(t, svc, "minh@example.com")
	ctx := context.Background()

	input := LoginInput{Email: "minh@example.com", Password: "wrong password"}
	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, input)
		requireCode(t, err, pkgerrors.CodeUnauthorized)
	}

	_, err := svc.Login(ctx, input)
	requireCode(t, err, pkgerrors.CodeRateLimit)
}

func TestLoginAllowedWhenLimiterUnavailable(t *testing.T) {
	limiter := newStubLimiter()
	limiter.err = errors.New("redis down")
	svc, _ := newCustomerService(t, limiter)
	registerCustomer(t, svc, "minh@example.com")

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "minh@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("expected login to pass with limiter down, got %v", err)
	}
	if result.AccessToken == "" {
		t.Fatalf("expected access token")
	}
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	svc, _ := newCustomerService(t, newStubLimiter())
	customer := registerCustomer(t, svc, "minh@example.com")
	ctx := context.Background()

	first, err := svc.CreateAddress(ctx, customer.Customer.ID, AddressInput{
		Receiver:   "Minh Nguyen",
		Phone:      "0900000001",
		ProvinceID: 202,
		DistrictID: 1454,
		WardCode:   "21012",
		Detail:     "12 Nguyen Trai",
	})
	if err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	if !first.IsDefault {
		t.Fatalf("expected first address to become default")
	}

	second, err := svc.CreateAddress(ctx, customer.Customer.ID, AddressInput{
		Receiver:   "Minh Nguyen",
		Phone:      "0900000001",
		ProvinceID: 201,
		DistrictID: 1482,
		WardCode:   "11007",
		Detail:     "5 Le Loi",
	})
	if err != nil {
		t.Fatalf("create second address failed: %v", err)
	}
	if second.IsDefault {
		t.Fatalf("expected second address to not be default")
	}
}

func TestSetDefaultAddressMovesFlag(t *testing.T) {
	svc, _ := newCustomerService(t, newStubLimiter())
	customer := registerCustomer(t, svc, "minh@example.com")
	ctx := context.Background()

	input := AddressInput{
		Receiver:   "Minh Nguyen",
		Phone:      "0900000001",
		ProvinceID: 202,
		DistrictID: 1454,
		WardCode:   "21012",
		Detail:     "12 Nguyen Trai",
	}
	first, err := svc.CreateAddress(ctx, customer.Customer.ID, input)
	if err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	input.Detail = "5 Le Loi"
	second, err := svc.CreateAddress(ctx, customer.Customer.ID, input)
	if err != nil {
		t.Fatalf("create second address failed: %v", err)
	}

	if err := svc.SetDefaultAddress(ctx, customer.Customer.ID, second.ID); err != nil {
		t.Fatalf("set default failed: %v", err)
	}

	rows, err := svc.ListAddresses(ctx, customer.Customer.ID)
	if err != nil {
		t.Fatalf("list addresses failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two addresses, got %d", len(rows))
	}
	if rows[0].ID != second.ID || !rows[0].IsDefault {
		t.Fatalf("expected the new default listed first, got %+v", rows)
	}
	for _, row := range rows {
		if row.ID == first.ID && row.IsDefault {
			t.Fatalf("expected old default cleared")
		}
	}
}

func TestAddressOwnershipEnforced(t *testing.T) {
	svc, _ := newCustomerService(t, newStubLimiter())
	owner := registerCustomer(t, svc, "owner@example.com")
	intruder := registerCustomer(t, svc, "intruder@example.com")
	ctx := context.Background()

	address, err := svc.CreateAddress(ctx, owner.Customer.ID, AddressInput{
		Receiver:   "Owner",
		Phone:      "0900000001",
		ProvinceID: 202,
		DistrictID: 1454,
		WardCode:   "21012",
		Detail:     "12 Nguyen Trai",
	})
	if err != nil {
		t.Fatalf("create address failed: %v", err)
	}

	err = svc.DeleteAddress(ctx, intruder.Customer.ID, address.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	err = svc.DeleteAddress(ctx, intruder.Customer.ID, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	svc, _ := newCustomerService(t, newStubLimiter())
	customer := registerCustomer(t, svc, "minh@example.com")
	ctx := context.Background()

	phone := "0900000009"
	updated, err := svc.UpdateProfile(ctx, customer.Customer.ID, UpdateProfileInput{Phone: &phone})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.Name != "Minh Nguyen" {
		t.Fatalf("expected name untouched, got %q", updated.Name)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Fatalf("expected phone updated, got %v", updated.Phone)
	}
}
