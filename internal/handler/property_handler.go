package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"property-service/internal/apperror"
	"property-service/internal/middleware"
	"property-service/internal/model"
	"property-service/internal/service"
	"property-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// PropertyService is the aggregate service the handlers delegate to
type PropertyService interface {
	Create(ctx context.Context, landlordID uuid.UUID, input service.CreatePropertyInput) (*model.Property, error)
	Update(ctx context.Context, id, landlordID uuid.UUID, input service.UpdatePropertyInput) (*model.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Property, error)
	List(ctx context.Context, filter service.ListFilter) (*service.ListResult, error)
	Delete(ctx context.Context, id, landlordID uuid.UUID) error
}

// ImageRequest is one image in a create or update body
type ImageRequest struct {
	ImageURL string `json:"image_url"`
	IsMain   bool   `json:"is_main"`
}

// SpecificationsRequest is the full specification required on create
type SpecificationsRequest struct {
	Bedrooms         int     `json:"bedrooms"`
	Bathrooms        int     `json:"bathrooms"`
	Floor            int     `json:"floor"`
	ParkingSpaces    int     `json:"parking_spaces"`
	AreaSqft         float64 `json:"area_sqft"`
	DetailedLocation string  `json:"detailed_location"`
}

// SpecificationsPatchRequest carries only the specification fields to change
type SpecificationsPatchRequest struct {
	Bedrooms         *int     `json:"bedrooms"`
	Bathrooms        *int     `json:"bathrooms"`
	Floor            *int     `json:"floor"`
	ParkingSpaces    *int     `json:"parking_spaces"`
	AreaSqft         *float64 `json:"area_sqft"`
	DetailedLocation *string  `json:"detailed_location"`
}

// DetailedLocationRequest is the structured address; omitted fields are left alone
type DetailedLocationRequest struct {
	Floor          *int     `json:"floor"`
	City           *string  `json:"city"`
	Area           *string  `json:"area"`
	StreetName     *string  `json:"street_name"`
	BuildingNumber *string  `json:"building_number"`
	UnitApt        *string  `json:"unit_apt"`
	LocationLat    *float64 `json:"location_lat"`
	LocationLong   *float64 `json:"location_long"`
}

// CoordinatesRequest is a map point
type CoordinatesRequest struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// CreatePropertyRequest defines the body of POST /api/properties
type CreatePropertyRequest struct {
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	MonthlyPrice     float64                  `json:"monthly_price"`
	SecurityDeposit  float64                  `json:"security_deposit"`
	Address          string                   `json:"address"`
	Type             *model.PropertyType      `json:"type"`
	Furnishing       *model.Furnishing        `json:"furnishing"`
	TargetTenant     *model.TargetTenant      `json:"target_tenant"`
	AvailabilityDate *string                  `json:"availability_date"`
	Images           []ImageRequest           `json:"images"`
	AmenityNames     []string                 `json:"amenity_names"`
	HouseRuleNames   []string                 `json:"house_rule_names"`
	Specifications   *SpecificationsRequest   `json:"specifications"`
	DetailedLocation *DetailedLocationRequest `json:"detailed_location"`
}

// UpdatePropertyRequest defines the body of PATCH /api/properties/:id. A
// present collection replaces the stored one; an empty array clears it.
type UpdatePropertyRequest struct {
	Title            *string                     `json:"title"`
	Description      *string                     `json:"description"`
	MonthlyPrice     *float64                    `json:"monthly_price"`
	SecurityDeposit  *float64                    `json:"security_deposit"`
	Address          *string                     `json:"address"`
	Coordinates      *CoordinatesRequest         `json:"coordinates"`
	Type             *model.PropertyType         `json:"type"`
	Furnishing       *model.Furnishing           `json:"furnishing"`
	Status           *model.PropertyStatus       `json:"status"`
	TargetTenant     *model.TargetTenant         `json:"target_tenant"`
	AvailabilityDate *string                     `json:"availability_date"`
	Images           *[]ImageRequest             `json:"images"`
	AmenityNames     *[]string                   `json:"amenity_names"`
	HouseRuleNames   *[]string                   `json:"house_rule_names"`
	Specifications   *SpecificationsPatchRequest `json:"specifications"`
	DetailedLocation *DetailedLocationRequest    `json:"detailed_location"`
}

// PropertyHandler serves the property endpoints
type PropertyHandler struct {
	service PropertyService
}

func NewPropertyHandler(svc PropertyService) *PropertyHandler {
	return &PropertyHandler{service: svc}
}

// Register mounts the routes; reads are public, writes require auth
func (h *PropertyHandler) Register(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("", h.ListProperties)
	g.GET("/:id", h.GetProperty)
	g.POST("", h.CreateProperty, auth)
	g.PATCH("/:id", h.UpdateProperty, auth)
	g.PUT("/:id", h.UpdateProperty, auth)
	g.DELETE("/:id", h.DeleteProperty, auth)
}

// CreateProperty handles creating a new property
func (h *PropertyHandler) CreateProperty(c echo.Context) error {
	log := logger.FromContext(c)

	landlordID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req CreatePropertyRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid request data", zap.Error(err))
		return apperror.Validation("invalid request body")
	}
	if req.Specifications == nil {
		return apperror.Validation("invalid request body", "specifications is required")
	}

	availability, err := parseDate("availability_date", req.AvailabilityDate)
	if err != nil {
		return err
	}

	log.Info("Property creation request",
		zap.String("title", req.Title),
		zap.Float64("monthly_price", req.MonthlyPrice),
		zap.Int("images", len(req.Images)),
		zap.Strings("amenity_names", req.AmenityNames))

	property, err := h.service.Create(c.Request().Context(), landlordID, service.CreatePropertyInput{
		Title:            req.Title,
		Description:      req.Description,
		MonthlyPrice:     req.MonthlyPrice,
		SecurityDeposit:  req.SecurityDeposit,
		Address:          req.Address,
		Type:             req.Type,
		Furnishing:       req.Furnishing,
		TargetTenant:     req.TargetTenant,
		AvailabilityDate: availability,
		Images:           toImageInputs(req.Images),
		AmenityNames:     req.AmenityNames,
		HouseRuleNames:   req.HouseRuleNames,
		Specifications: service.SpecificationsInput{
			Bedrooms:         req.Specifications.Bedrooms,
			Bathrooms:        req.Specifications.Bathrooms,
			Floor:            req.Specifications.Floor,
			ParkingSpaces:    req.Specifications.ParkingSpaces,
			AreaSqft:         req.Specifications.AreaSqft,
			DetailedLocation: req.Specifications.DetailedLocation,
		},
		DetailedLocation: toLocationInput(req.DetailedLocation),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, property)
}

// UpdateProperty handles partial updates of an owned property
func (h *PropertyHandler) UpdateProperty(c echo.Context) error {
	log := logger.FromContext(c)

	landlordID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdatePropertyRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid request data", zap.String("property_id", id.String()), zap.Error(err))
		return apperror.Validation("invalid request body")
	}

	availability, err := parseDate("availability_date", req.AvailabilityDate)
	if err != nil {
		return err
	}

	input := service.UpdatePropertyInput{
		Title:            req.Title,
		Description:      req.Description,
		MonthlyPrice:     req.MonthlyPrice,
		SecurityDeposit:  req.SecurityDeposit,
		Address:          req.Address,
		Type:             req.Type,
		Furnishing:       req.Furnishing,
		Status:           req.Status,
		TargetTenant:     req.TargetTenant,
		AvailabilityDate: availability,
		DetailedLocation: toLocationInput(req.DetailedLocation),
	}
	if req.Coordinates != nil {
		input.Coordinates = &service.Coordinates{Lat: req.Coordinates.Lat, Long: req.Coordinates.Long}
	}
	if req.Images != nil {
		input.Images = service.Replace(toImageInputs(*req.Images)...)
	}
	if req.AmenityNames != nil {
		input.AmenityNames = service.Replace(*req.AmenityNames...)
	}
	if req.HouseRuleNames != nil {
		input.HouseRuleNames = service.Replace(*req.HouseRuleNames...)
	}
	if s := req.Specifications; s != nil {
		input.Specifications = &service.SpecificationsPatch{
			Bedrooms:         s.Bedrooms,
			Bathrooms:        s.Bathrooms,
			Floor:            s.Floor,
			ParkingSpaces:    s.ParkingSpaces,
			AreaSqft:         s.AreaSqft,
			DetailedLocation: s.DetailedLocation,
		}
	}

	log.Info("Property update request",
		zap.String("property_id", id.String()),
		zap.Bool("images", req.Images != nil),
		zap.Bool("amenity_names", req.AmenityNames != nil),
		zap.Bool("house_rule_names", req.HouseRuleNames != nil),
		zap.Bool("specifications", req.Specifications != nil))

	property, err := h.service.Update(c.Request().Context(), id, landlordID, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, property)
}

// GetProperty handles retrieving a single property by ID
func (h *PropertyHandler) GetProperty(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	property, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, property)
}

// ListProperties handles filtered, paginated listing
func (h *PropertyHandler) ListProperties(c echo.Context) error {
	log := logger.FromContext(c)

	filter, err := parseListFilter(c)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	log.Info("Properties retrieved successfully",
		zap.Int("count", len(result.Items)),
		zap.Int64("total", result.Pagination.Total),
		zap.Int("page", result.Pagination.Page))
	return c.JSON(http.StatusOK, result)
}

// DeleteProperty handles soft deletion of an owned property
func (h *PropertyHandler) DeleteProperty(c echo.Context) error {
	landlordID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id, landlordID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Property deleted successfully"})
}

func parseListFilter(c echo.Context) (service.ListFilter, error) {
	filter := service.ListFilter{}

	if v := c.QueryParam("status"); v != "" {
		status := model.PropertyStatus(v)
		filter.Status = &status
	}
	if v := c.QueryParam("type"); v != "" {
		propertyType := model.PropertyType(v)
		filter.Type = &propertyType
	}
	if v := c.QueryParam("furnishing"); v != "" {
		furnishing := model.Furnishing(v)
		filter.Furnishing = &furnishing
	}
	if v := c.QueryParam("target_tenant"); v != "" {
		tenant := model.TargetTenant(v)
		filter.TargetTenant = &tenant
	}

	var err error
	if filter.MinPrice, err = parseFloatParam(c, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parseFloatParam(c, "max_price"); err != nil {
		return filter, err
	}

	if v := c.QueryParam("landlord_id"); v != "" {
		landlordID, err := uuid.Parse(v)
		if err != nil {
			return filter, apperror.Validation("invalid query parameter", "landlord_id must be a UUID")
		}
		filter.LandlordID = &landlordID
	}

	if v := c.QueryParam("availability_date"); v != "" {
		if filter.AvailabilityDate, err = parseDate("availability_date", &v); err != nil {
			return filter, err
		}
	}

	if filter.Page, err = parseIntParam(c, "page", 1, 0); err != nil {
		return filter, err
	}
	if filter.Limit, err = parseIntParam(c, "limit", 1, service.MaxLimit); err != nil {
		return filter, err
	}

	return filter, nil
}

// parseIntParam reads an optional integer in [min, max]; max 0 means unbounded
func parseIntParam(c echo.Context, name string, min, max int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < min || (max > 0 && n > max) {
		detail := name + " must be an integer >= " + strconv.Itoa(min)
		if max > 0 {
			detail = name + " must be an integer between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)
		}
		return 0, apperror.Validation("invalid query parameter", detail)
	}
	return n, nil
}

func parseFloatParam(c echo.Context, name string) (*float64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, apperror.Validation("invalid query parameter", name+" must be a number")
	}
	return &f, nil
}

func parseDate(name string, v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, apperror.Validation("invalid date", name+" must be formatted as YYYY-MM-DD")
	}
	return &t, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// ids are UUIDs, so anything else cannot name a property
		return uuid.Nil, apperror.ErrPropertyNotFound
	}
	return id, nil
}

func requireUser(c echo.Context) (uuid.UUID, error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	return userID, nil
}

func toImageInputs(images []ImageRequest) []service.ImageInput {
	out := make([]service.ImageInput, 0, len(images))
	for _, img := range images {
		out = append(out, service.ImageInput{URL: img.ImageURL, IsMain: img.IsMain})
	}
	return out
}

func toLocationInput(req *DetailedLocationRequest) *service.DetailedLocationInput {
	if req == nil {
		return nil
	}
	return &service.DetailedLocationInput{
		Floor:          req.Floor,
		City:           req.City,
		Area:           req.Area,
		StreetName:     req.StreetName,
		BuildingNumber: req.BuildingNumber,
		UnitApt:        req.UnitApt,
		LocationLat:    req.LocationLat,
		LocationLong:   req.LocationLong,
	}
}
