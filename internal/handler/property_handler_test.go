package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"property-service/internal/apperror"
	"property-service/internal/middleware"
	"property-service/internal/model"
	"property-service/internal/service"
	"property-service/pkg/config"
	"property-service/pkg/database/databasetest"
	"property-service/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	err error

	landlordID   uuid.UUID
	propertyID   uuid.UUID
	createInput  service.CreatePropertyInput
	updateInput  service.UpdatePropertyInput
	listFilter   service.ListFilter
	deleteCalled bool
}

func (s *stubService) property() *model.Property {
	return &model.Property{ID: uuid.New(), LandlordID: s.landlordID, Title: "stub", Status: model.PropertyStatusDraft}
}

func (s *stubService) Create(_ context.Context, landlordID uuid.UUID, input service.CreatePropertyInput) (*model.Property, error) {
	s.landlordID, s.createInput = landlordID, input
	if s.err != nil {
		return nil, s.err
	}
	return s.property(), nil
}

func (s *stubService) Update(_ context.Context, id, landlordID uuid.UUID, input service.UpdatePropertyInput) (*model.Property, error) {
	s.propertyID, s.landlordID, s.updateInput = id, landlordID, input
	if s.err != nil {
		return nil, s.err
	}
	return s.property(), nil
}

func (s *stubService) GetByID(_ context.Context, id uuid.UUID) (*model.Property, error) {
	s.propertyID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.property(), nil
}

func (s *stubService) List(_ context.Context, filter service.ListFilter) (*service.ListResult, error) {
	s.listFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	return &service.ListResult{
		Items:      []model.Property{*s.property()},
		Pagination: service.Pagination{Total: 1, Page: 1, Limit: 10, TotalPages: 1},
	}, nil
}

func (s *stubService) Delete(_ context.Context, id, landlordID uuid.UUID) error {
	s.propertyID, s.landlordID, s.deleteCalled = id, landlordID, true
	return s.err
}

type harness struct {
	e     *echo.Echo
	stub  *stubService
	user  uuid.UUID
	token string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	jwt := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-key"})
	user := uuid.New()
	token, err := jwt.GenerateToken(user, string(model.RoleLandlord), time.Hour)
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Use(middleware.RequestIDMiddleware)

	stub := &stubService{}
	NewPropertyHandler(stub).Register(e.Group("/api/properties"), middleware.AuthMiddleware(jwt))

	return &harness{e: e, stub: stub, user: user, token: token}
}

func (h *harness) do(method, target, body string, auth bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if auth {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+h.token)
	}

	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const createBody = `{
	"title": "Sunny flat",
	"monthly_price": 1500,
	"address": "12 Garden Road",
	"type": "apartment",
	"availability_date": "2025-09-01",
	"images": [{"image_url": "a.jpg", "is_main": true}, {"image_url": "b.jpg"}],
	"amenity_names": ["Fitness Center"],
	"specifications": {"bedrooms": 2, "bathrooms": 2, "floor": 5, "area_sqft": 1200, "detailed_location": "east wing"},
	"detailed_location": {"city": "Lisbon"}
}`

func TestCreateProperty(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/properties", createBody, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	in := h.stub.createInput
	assert.Equal(t, h.user, h.stub.landlordID)
	assert.Equal(t, "Sunny flat", in.Title)
	assert.Equal(t, model.PropertyType("apartment"), *in.Type)
	require.NotNil(t, in.AvailabilityDate)
	assert.Equal(t, "2025-09-01", in.AvailabilityDate.Format(dateLayout))
	assert.Equal(t, []service.ImageInput{{URL: "a.jpg", IsMain: true}, {URL: "b.jpg"}}, in.Images)
	assert.Equal(t, []string{"Fitness Center"}, in.AmenityNames)
	assert.Equal(t, 1200.0, in.Specifications.AreaSqft)
	require.NotNil(t, in.DetailedLocation)
	assert.Equal(t, "Lisbon", *in.DetailedLocation.City)
}

func TestCreateProperty_RequestErrors(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/properties", createBody, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), body.RequestID)

	rec = h.do(http.MethodPost, "/api/properties", `{"title": "no specs"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)

	rec = h.do(http.MethodPost, "/api/properties", `{"title": 42}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)

	rec = h.do(http.MethodPost, "/api/properties",
		strings.Replace(createBody, "2025-09-01", "01/09/2025", 1), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}

func TestUpdateProperty(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()

	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		t.Run(method, func(t *testing.T) {
			rec := h.do(method, "/api/properties/"+id.String(),
				`{"status": "Published", "amenity_names": [], "specifications": {"bedrooms": 3}, "coordinates": {"lat": 1.5, "long": 2.5}}`, true)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			in := h.stub.updateInput
			assert.Equal(t, id, h.stub.propertyID)
			assert.Equal(t, h.user, h.stub.landlordID)
			assert.Equal(t, model.PropertyStatus("Published"), *in.Status)
			assert.Nil(t, in.Title)
			assert.False(t, in.Images.IsSet(), "omitted collections stay unset")
			assert.False(t, in.HouseRuleNames.IsSet())
			assert.True(t, in.AmenityNames.IsSet())
			assert.Empty(t, in.AmenityNames.Values())
			require.NotNil(t, in.Specifications)
			assert.Equal(t, 3, *in.Specifications.Bedrooms)
			assert.Nil(t, in.Specifications.Bathrooms)
			assert.Equal(t, &service.Coordinates{Lat: 1.5, Long: 2.5}, in.Coordinates)
		})
	}
}

func TestUpdateProperty_ReplacesImages(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPatch, "/api/properties/"+uuid.NewString(), `{"images": [{"image_url": "c.jpg"}]}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, h.stub.updateInput.Images.IsSet())
	assert.Equal(t, []service.ImageInput{{URL: "c.jpg"}}, h.stub.updateInput.Images.Values())
}

func TestGetProperty(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()

	rec := h.do(http.MethodGet, "/api/properties/"+id.String(), "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, h.stub.propertyID)

	rec = h.do(http.MethodGet, "/api/properties/not-a-uuid", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PROPERTY_NOT_FOUND", decodeError(t, rec).Code)
}

func TestListProperties(t *testing.T) {
	h := newHarness(t)
	landlord := uuid.New()

	rec := h.do(http.MethodGet, "/api/properties?status=published&type=villa&min_price=100&max_price=900.5&landlord_id="+
		landlord.String()+"&availability_date=2025-01-31&page=2&limit=25", "", false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	f := h.stub.listFilter
	assert.Equal(t, model.PropertyStatus("published"), *f.Status)
	assert.Equal(t, model.PropertyType("villa"), *f.Type)
	assert.Nil(t, f.Furnishing)
	assert.Equal(t, 100.0, *f.MinPrice)
	assert.Equal(t, 900.5, *f.MaxPrice)
	assert.Equal(t, landlord, *f.LandlordID)
	assert.Equal(t, "2025-01-31", f.AvailabilityDate.Format(dateLayout))
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 25, f.Limit)

	var body service.ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Items, 1)
	assert.Equal(t, 1, body.Pagination.TotalPages)
}

func TestListProperties_InvalidQuery(t *testing.T) {
	h := newHarness(t)

	for _, query := range []string{
		"page=0",
		"page=abc",
		"limit=0",
		"limit=101",
		"min_price=cheap",
		"landlord_id=42",
		"availability_date=tomorrow",
	} {
		t.Run(query, func(t *testing.T) {
			rec := h.do(http.MethodGet, "/api/properties?"+query, "", false)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
		})
	}
}

func TestDeleteProperty(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()

	rec := h.do(http.MethodDelete, "/api/properties/"+id.String(), "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.stub.deleteCalled)
	assert.Equal(t, id, h.stub.propertyID)

	rec = h.do(http.MethodDelete, "/api/properties/"+id.String(), "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    string
		message string
		details []string
	}{
		{apperror.ErrPropertyNotFound, http.StatusNotFound, "PROPERTY_NOT_FOUND", "property not found", nil},
		{apperror.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil},
		{apperror.Forbidden("you do not own this property"), http.StatusForbidden, "FORBIDDEN", "you do not own this property", nil},
		{apperror.ErrInvalidRange, http.StatusBadRequest, "INVALID_RANGE", apperror.ErrInvalidRange.Message, nil},
		{apperror.InvalidAmenityNames([]string{"Sauna"}), http.StatusBadRequest, "INVALID_AMENITY_NAMES", "invalid amenity names", []string{"Sauna"}},
		{apperror.InvalidHouseRuleNames([]string{"x"}), http.StatusBadRequest, "INVALID_HOUSE_RULE_NAMES", "invalid house rule names", []string{"x"}},
		{apperror.ConstraintViolation("only one image can be marked as main"), http.StatusBadRequest, "CONSTRAINT_VIOLATION", "only one image can be marked as main", nil},
		{errors.Wrap(errors.New("pq: connection refused on 10.0.0.3"), "load property"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := newHarness(t)
			h.stub.err = tt.err

			rec := h.do(http.MethodGet, "/api/properties/"+uuid.NewString(), "", false)
			assert.Equal(t, tt.status, rec.Code)

			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.details, body.Details)
			assert.NotContains(t, rec.Body.String(), "10.0.0.3")
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/nothing", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	e.GET("/health", NewHealthHandler(databasetest.New(t)).HealthCheck)

	req := httptest.NewRequest(http.MethodGet, "/health?check=db", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["db_status"])
}
