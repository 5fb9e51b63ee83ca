package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stridewear/stridewear-backend/pkg/config"
	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
	"github.com/stridewear/stridewear-backend/pkg/logger"
)

// defaultParcelWeight is the billable weight sent to the carrier when a
// shipment has no measured weight. One boxed pair of sneakers.
const defaultParcelWeight = 1200

// QuoteRequest prices one delivery service for a destination.
type QuoteRequest struct {
	ServiceID   int
	ToDistrict  int
	ToWardCode  string
	WeightGrams int
}

// Quote is a priced delivery option. TimeMillis is the promised delivery
// horizon in milliseconds, FeeFallback marks quotes built from the configured
// fallback fee after a carrier pricing failure.
type Quote struct {
	ServiceID   int    `json:"service_id"`
	ServiceName string `json:"service_name"`
	Fee         int    `json:"fee"`
	TimeMillis  int64  `json:"time"`
	FeeFallback bool   `json:"fee_fallback"`
}

// Service exposes region lookups and delivery quoting.
type Service interface {
	ListProvinces(ctx context.Context) ([]Province, error)
	ListDistricts(ctx context.Context, provinceID int) ([]District, error)
	ListWards(ctx context.Context, districtID int) ([]Ward, error)
	ListServices(ctx context.Context, toDistrict int) ([]ServiceOption, error)
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
	QuoteAll(ctx context.Context, toDistrict int, toWardCode string) ([]Quote, error)
}

type regionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	RegionCacheKey(parts ...string) string
}

type service struct {
	client Client
	cache  regionCache
	cfg    config.LogisticsConfig
	logg   *logger.Logger
}

// NewService constructs a shipping service instance.
func NewService(client Client, cache regionCache, cfg config.LogisticsConfig, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("carrier client required")
	}
	if cache == nil {
		return nil, fmt.Errorf("region cache required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		client: client,
		cache:  cache,
		cfg:    cfg,
		logg:   logg,
	}, nil
}

// ListProvinces returns the carrier's provinces, served from cache when warm.
func (s *service) ListProvinces(ctx context.Context) ([]Province, error) {
	key := s.cache.RegionCacheKey("provinces")
	var provinces []Province
	if s.cacheHit(ctx, key, &provinces) {
		return provinces, nil
	}
	provinces, err := s.client.ListProvinces(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "carrier: list provinces")
	}
	s.cachePut(ctx, key, provinces)
	return provinces, nil
}

// ListDistricts returns the districts of a province.
func (s *service) ListDistricts(ctx context.Context, provinceID int) ([]District, error) {
	key := s.cache.RegionCacheKey("districts", strconv.Itoa(provinceID))
	var districts []District
	if s.cacheHit(ctx, key, &districts) {
		return districts, nil
	}
	districts, err := s.client.ListDistricts(ctx, provinceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "carrier: list districts")
	}
	s.cachePut(ctx, key, districts)
	return districts, nil
}

// ListWards returns the wards of a district.
func (s *service) ListWards(ctx context.Context, districtID int) ([]Ward, error) {
	key := s.cache.RegionCacheKey("wards", strconv.Itoa(districtID))
	var wards []Ward
	if s.cacheHit(ctx, key, &wards) {
		return wards, nil
	}
	wards, err := s.client.ListWards(ctx, districtID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "carrier: list wards")
	}
	s.cachePut(ctx, key, wards)
	return wards, nil
}

// ListServices returns the delivery services available to a destination
// district. A route the carrier cannot serve surfaces as not found.
func (s *service) ListServices(ctx context.Context, toDistrict int) ([]ServiceOption, error) {
	services, err := s.client.AvailableServices(ctx, s.cfg.ShopDistrictID, toDistrict)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no delivery service available for this address")
	}
	if len(services) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no delivery service available for this address")
	}
	return services, nil
}

// Quote prices one service. The fee and the delivery promise are fetched
// concurrently; a pricing failure falls back to the configured flat fee while
// a leadtime failure fails the quote.
func (s *service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if req.ServiceID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	if req.ToDistrict <= 0 || req.ToWardCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination district and ward are required")
	}

	services, err := s.ListServices(ctx, req.ToDistrict)
	if err != nil {
		return nil, err
	}
	serviceName := ""
	for _, option := range services {
		if option.ServiceID == req.ServiceID {
			serviceName = option.Name
			break
		}
	}
	if serviceName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery service not offered on this route")
	}

	quote, err := s.quoteService(ctx, req, serviceName)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// QuoteAll prices every service available to the destination, one service at
// a time in the order the carrier lists them.
func (s *service) QuoteAll(ctx context.Context, toDistrict int, toWardCode string) ([]Quote, error) {
	services, err := s.ListServices(ctx, toDistrict)
	if err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(services))
	for _, option := range services {
		quote, err := s.quoteService(ctx, QuoteRequest{
			ServiceID:  option.ServiceID,
			ToDistrict: toDistrict,
			ToWardCode: toWardCode,
		}, option.Name)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *quote)
	}
	return quotes, nil
}

func (s *service) quoteService(ctx context.Context, req QuoteRequest, serviceName string) (*Quote, error) {
	weight := req.WeightGrams
	if weight <= 0 {
		weight = defaultParcelWeight
	}

	var fee int
	feeFallback := false
	var leadtime int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		total, err := s.client.CalculateFee(groupCtx, FeeRequest{
			ServiceID:    req.ServiceID,
			FromDistrict: s.cfg.ShopDistrictID,
			ToDistrict:   req.ToDistrict,
			ToWardCode:   req.ToWardCode,
			WeightGrams:  weight,
		})
		if err != nil {
			s.logg.Warn(ctx, "carrier: fee lookup failed, using fallback fee")
			fee = s.cfg.FallbackFee
			feeFallback = true
			return nil
		}
		fee = total
		return nil
	})
	group.Go(func() error {
		seconds, err := s.client.Leadtime(groupCtx, LeadtimeRequest{
			ServiceID:    req.ServiceID,
			FromDistrict: s.cfg.ShopDistrictID,
			ToDistrict:   req.ToDistrict,
			ToWardCode:   req.ToWardCode,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "carrier: leadtime lookup")
		}
		leadtime = seconds
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &Quote{
		ServiceID:   req.ServiceID,
		ServiceName: serviceName,
		Fee:         fee,
		TimeMillis:  leadtime * 1000,
		FeeFallback: feeFallback,
	}, nil
}

func (s *service) cacheHit(ctx context.Context, key string, out any) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false
	}
	return true
}

func (s *service) cachePut(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cfg.RegionCacheTTL); err != nil {
		s.logg.Warn(ctx, "redis: caching region lookup failed")
	}
}
