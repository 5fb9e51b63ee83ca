package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stridewear/stridewear-backend/pkg/config"
)

// Province is one top-level region from the carrier's master data.
type Province struct {
	ProvinceID int    `json:"ProvinceID"`
	Name       string `json:"ProvinceName"`
}

// District is one second-level region.
type District struct {
	DistrictID int    `json:"DistrictID"`
	ProvinceID int    `json:"ProvinceID"`
	Name       string `json:"DistrictName"`
}

// Ward is one third-level region, keyed by a string code.
type Ward struct {
	WardCode   string `json:"WardCode"`
	DistrictID int    `json:"DistrictID"`
	Name       string `json:"WardName"`
}

// ServiceOption is one delivery service the carrier offers on a route.
type ServiceOption struct {
	ServiceID int    `json:"service_id"`
	Name      string `json:"short_name"`
}

// FeeRequest asks the carrier to price one shipment.
type FeeRequest struct {
	ServiceID    int
	FromDistrict int
	ToDistrict   int
	ToWardCode   string
	WeightGrams  int
}

// LeadtimeRequest asks the carrier for the promised delivery date.
type LeadtimeRequest struct {
	ServiceID    int
	FromDistrict int
	ToDistrict   int
	ToWardCode   string
}

// Client is the carrier API surface the shipping service depends on.
type Client interface {
	ListProvinces(ctx context.Context) ([]Province, error)
	ListDistricts(ctx context.Context, provinceID int) ([]District, error)
	ListWards(ctx context.Context, districtID int) ([]Ward, error)
	AvailableServices(ctx context.Context, fromDistrict, toDistrict int) ([]ServiceOption, error)
	CalculateFee(ctx context.Context, req FeeRequest) (int, error)
	Leadtime(ctx context.Context, req LeadtimeRequest) (int64, error)
}

// HTTPClient talks to a GHN-compatible logistics API.
type HTTPClient struct {
	httpClient *http.Client
	regionAPI  string
	serviceAPI string
	token      string
	shopID     int
}

// NewHTTPClient builds the carrier client from config.
func NewHTTPClient(cfg config.LogisticsConfig) (*HTTPClient, error) {
	if cfg.RegionAPI == "" || cfg.ServiceAPI == "" {
		return nil, fmt.Errorf("logistics api endpoints are required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("logistics token is required")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		regionAPI:  strings.TrimRight(cfg.RegionAPI, "/"),
		serviceAPI: strings.TrimRight(cfg.ServiceAPI, "/"),
		token:      cfg.Token,
		shopID:     cfg.ShopID,
	}, nil
}

// envelope is the carrier's uniform response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *HTTPClient) ListProvinces(ctx context.Context) ([]Province, error) {
	var provinces []Province
	if err := c.get(ctx, c.regionAPI+"/province", nil, &provinces); err != nil {
		return nil, err
	}
	return provinces, nil
}

func (c *HTTPClient) ListDistricts(ctx context.Context, provinceID int) ([]District, error) {
	query := url.Values{"province_id": {strconv.Itoa(provinceID)}}
	var districts []District
	if err := c.get(ctx, c.regionAPI+"/district", query, &districts); err != nil {
		return nil, err
	}
	return districts, nil
}

func (c *HTTPClient) ListWards(ctx context.Context, districtID int) ([]Ward, error) {
	query := url.Values{"district_id": {strconv.Itoa(districtID)}}
	var wards []Ward
	if err := c.get(ctx, c.regionAPI+"/ward", query, &wards); err != nil {
		return nil, err
	}
	return wards, nil
}

func (c *HTTPClient) AvailableServices(ctx context.Context, fromDistrict, toDistrict int) ([]ServiceOption, error) {
	body := map[string]any{
		"shop_id":       c.shopID,
		"from_district": fromDistrict,
		"to_district":   toDistrict,
	}
	var services []ServiceOption
	if err := c.post(ctx, c.serviceAPI+"/available-services", body, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *HTTPClient) CalculateFee(ctx context.Context, req FeeRequest) (int, error) {
	body := map[string]any{
		"service_id":       req.ServiceID,
		"from_district_id": req.FromDistrict,
		"to_district_id":   req.ToDistrict,
		"to_ward_code":     req.ToWardCode,
		"weight":           req.WeightGrams,
	}
	var fee struct {
		Total int `json:"total"`
	}
	if err := c.post(ctx, c.serviceAPI+"/fee", body, &fee); err != nil {
		return 0, err
	}
	return fee.Total, nil
}

// Leadtime returns the promised delivery time in seconds from now.
func (c *HTTPClient) Leadtime(ctx context.Context, req LeadtimeRequest) (int64, error) {
	body := map[string]any{
		"service_id":       req.ServiceID,
		"from_district_id": req.FromDistrict,
		"to_district_id":   req.ToDistrict,
		"to_ward_code":     req.ToWardCode,
	}
	var result struct {
		Leadtime int64 `json:"leadtime"`
	}
	if err := c.post(ctx, c.serviceAPI+"/leadtime", body, &result); err != nil {
		return 0, err
	}
	return result.Leadtime, nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding carrier request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	req.Header.Set("Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("carrier request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("carrier returned %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("carrier returned %s", resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding carrier response: %w", err)
	}
	if env.Code != 200 {
		return fmt.Errorf("carrier error code %d: %s", env.Code, env.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding carrier payload: %w", err)
	}
	return nil
}
