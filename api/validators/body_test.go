package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/stridewear/stridewear-backend/pkg/errors"
)

type addItemBody struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

func postJSON(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func requireValidation(t *testing.T, err error) map[string]any {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	switch details := typed.Details().(type) {
	case map[string]any:
		return details
	case map[string]string:
		out := make(map[string]any, len(details))
		for k, v := range details {
			out[k] = v
		}
		return out
	default:
		return nil
	}
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var body addItemBody
	err := DecodeJSONBody(postJSON(`{"product_id":"7b2e9dd2-3c55-4c38-9166-9e97f9ab9a50","quantity":2}`), &body)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Quantity != 2 {
		t.Fatalf("expected quantity bound, got %d", body.Quantity)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var body addItemBody
	err := DecodeJSONBody(postJSON(`{"product_id":"7b2e9dd2-3c55-4c38-9166-9e97f9ab9a50","quantity":2,"admin":true}`), &body)
	requireValidation(t, err)
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	var body addItemBody
	err := DecodeJSONBody(postJSON(`{"product_id":`), &body)
	requireValidation(t, err)
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	var body addItemBody
	err := DecodeJSONBody(postJSON(`{"product_id":"not-a-uuid","quantity":120}`), &body)
	details := requireValidation(t, err)
	if details == nil {
		t.Fatalf("expected field details")
	}
	if _, ok := details["product_id"]; !ok {
		t.Fatalf("expected product_id flagged, got %v", details)
	}
	if _, ok := details["quantity"]; !ok {
		t.Fatalf("expected quantity flagged, got %v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=25", nil)
	value, err := ParseQueryInt(r, "limit", 10, 1, 100)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if value != 25 {
		t.Fatalf("expected 25, got %d", value)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	value, err = ParseQueryInt(r, "limit", 10, 1, 100)
	if err != nil || value != 10 {
		t.Fatalf("expected default 10, got %d (%v)", value, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	_, err = ParseQueryInt(r, "limit", 10, 1, 100)
	requireValidation(t, err)

	r = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err = ParseQueryInt(r, "limit", 10, 1, 100)
	requireValidation(t, err)
}
