package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	carsvc "github.com/angelmondragon/dealerstock-backend/internal/cars"
	pkgerrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
	"github.com/angelmondragon/dealerstock-backend/pkg/pagination"
	"github.com/angelmondragon/dealerstock-backend/pkg/types"
)

type stubCarService struct {
	created   *carsvc.CreateCarInput
	searched  *carsvc.SearchInput
	versioned *carsvc.VersionedUpdateInput
	err       error
}

func (s *stubCarService) CreateCar(_ context.Context, input carsvc.CreateCarInput) (*carsvc.CarDTO, error) {
	s.created = &input
	if s.err != nil {
		return nil, s.err
	}
	return &carsvc.CarDTO{CarID: input.CarID, Brand: input.Brand}, nil
}

func (s *stubCarService) GetCar(_ context.Context, id string) (*carsvc.CarDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &carsvc.CarDTO{CarID: id}, nil
}

func (s *stubCarService) GetCarResilient(_ context.Context, id string) (*carsvc.CarDTO, error) {
	return s.GetCar(context.Background(), id)
}

func (s *stubCarService) ListCars(_ context.Context, input carsvc.ListInput) (*carsvc.CarListResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &carsvc.CarListResult{Cars: []carsvc.CarDTO{}, Meta: pagination.MetaFor(input.Page, 0)}, nil
}

func (s *stubCarService) SearchCars(_ context.Context, input carsvc.SearchInput) (*carsvc.CarListResult, error) {
	s.searched = &input
	if s.err != nil {
		return nil, s.err
	}
	return &carsvc.CarListResult{Cars: []carsvc.CarDTO{}, Meta: pagination.MetaFor(input.Page, 0)}, nil
}

func (s *stubCarService) UpdateCar(_ context.Context, id string, _ carsvc.UpdateCarInput) (*carsvc.CarDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &carsvc.CarDTO{CarID: id}, nil
}

func (s *stubCarService) UpdateCarVersioned(_ context.Context, id string, input carsvc.VersionedUpdateInput) (*carsvc.CarDTO, error) {
	s.versioned = &input
	if s.err != nil {
		return nil, s.err
	}
	return &carsvc.CarDTO{CarID: id, Version: input.ExpectedVersion + 1}, nil
}

func (s *stubCarService) DeleteCar(_ context.Context, _ string) error {
	return s.err
}

func TestCreateCarAcceptsValidPayload(t *testing.T) {
	stub := &stubCarService{}
	body := `{"car_id":"C1001","brand":"Toyota","model":"Corolla","year":2022,"engine_type":"Hybrid","price":"21999.99","quantity_in_stock":4}`

	rec := httptest.NewRecorder()
	CreateCar(stub, newTestLogger()).ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/v1/cars", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.created == nil || stub.created.CarID != "C1001" {
		t.Fatalf("service did not receive the decoded input: %+v", stub.created)
	}
	if !stub.created.Price.Equal(decimal.RequireFromString("21999.99")) {
		t.Fatalf("unexpected price %s", stub.created.Price)
	}
}

func TestCreateCarRejectsBadYear(t *testing.T) {
	body := `{"car_id":"C1001","brand":"Toyota","model":"Corolla","year":1776,"engine_type":"Hybrid","price":"21999.99"}`

	rec := httptest.NewRecorder()
	CreateCar(&stubCarService{}, newTestLogger()).ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/v1/cars", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateCarRejectsUnknownEngineType(t *testing.T) {
	body := `{"car_id":"C1001","brand":"Toyota","model":"Corolla","year":2022,"engine_type":"Steam","price":"100"}`

	rec := httptest.NewRecorder()
	CreateCar(&stubCarService{}, newTestLogger()).ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/v1/cars", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetCarRejectsMalformedID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := withChiParams(newJSONRequest(http.MethodGet, "/api/v1/cars/x1", ""), map[string]string{"carId": "x1"})
	GetCar(&stubCarService{}, newTestLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestUpdateCarVersionedMapsConflict(t *testing.T) {
	stub := &stubCarService{err: pkgerrors.New(pkgerrors.CodeConcurrentModification, "car C1001 was modified concurrently, reload and retry")}
	body := `{"price":"18000","expected_version":3}`

	rec := httptest.NewRecorder()
	req := withChiParams(newJSONRequest(http.MethodPut, "/api/v1/cars/C1001/versioned", body), map[string]string{"carId": "C1001"})
	UpdateCarVersioned(stub, newTestLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if stub.versioned == nil || stub.versioned.ExpectedVersion != 3 {
		t.Fatalf("expected version token to reach the service: %+v", stub.versioned)
	}

	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeConcurrentModification) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestSearchCarsParsesFilters(t *testing.T) {
	stub := &stubCarService{}
	rec := httptest.NewRecorder()
	req := newJSONRequest(http.MethodGet, "/api/v1/cars/search?q=corolla&year_min=2019&price_max=30000&sort_by=price_asc&page=2&page_size=5", "")
	SearchCars(stub, newTestLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	in := stub.searched
	if in == nil || in.Query == nil || *in.Query != "corolla" {
		t.Fatalf("query filter missing: %+v", in)
	}
	if in.YearMin == nil || *in.YearMin != 2019 {
		t.Fatalf("year_min filter missing: %+v", in)
	}
	if in.PriceMax == nil || !in.PriceMax.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("price_max filter missing: %+v", in)
	}
	if in.SortBy != carsvc.SortPriceAsc {
		t.Fatalf("unexpected sort %q", in.SortBy)
	}
	if in.Page.Page != 2 || in.Page.PageSize != 5 {
		t.Fatalf("unexpected pagination %+v", in.Page)
	}
}

func TestSearchCarsRejectsUnknownSort(t *testing.T) {
	rec := httptest.NewRecorder()
	req := newJSONRequest(http.MethodGet, "/api/v1/cars/search?sort_by=mileage", "")
	SearchCars(&stubCarService{}, newTestLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown sort, got %d", rec.Code)
	}
}

func TestListCarsRejectsOversizedPage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := newJSONRequest(http.MethodGet, "/api/v1/cars?page_size=500", "")
	ListCars(&stubCarService{}, newTestLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for page_size over the cap, got %d", rec.Code)
	}
}

func TestDeleteCarReturnsNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	req := withChiParams(newJSONRequest(http.MethodDelete, "/api/v1/cars/C1001", ""), map[string]string{"carId": "C1001"})
	DeleteCar(&stubCarService{}, newTestLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
