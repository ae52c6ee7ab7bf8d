package service

import (
	"context"
	"time"

	"property-service/internal/apperror"
	"property-service/internal/model"
	"property-service/internal/repository"
	"property-service/pkg/logger"
	"property-service/pkg/tracing"
	"property-service/prometheus"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// UserRepository looks up platform accounts
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// CatalogRepository resolves catalog names to ids, reporting unmatched names
type CatalogRepository interface {
	ResolveAmenities(ctx context.Context, names []string) ([]uint, []string, error)
	ResolveHouseRules(ctx context.Context, names []string) ([]uint, []string, error)
}

// PropertyService creates, reads, updates and deletes the property aggregate.
// Every mutation runs in a single store transaction.
type PropertyService struct {
	store    repository.PropertyStore
	users    UserRepository
	catalog  CatalogRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewPropertyService(store repository.PropertyStore, users UserRepository, catalog CatalogRepository) *PropertyService {
	return &PropertyService{
		store:    store,
		users:    users,
		catalog:  catalog,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new listing in DRAFT status together with its children and
// returns the stored aggregate.
func (s *PropertyService) Create(ctx context.Context, landlordID uuid.UUID, input CreatePropertyInput) (property *model.Property, err error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyService.Create")
	defer func() { finish(span, "create", err) }()
	span.SetAttributes(attribute.String("landlord_id", landlordID.String()))

	input.normalize()
	if err := s.validateStruct(input); err != nil {
		return nil, err
	}
	if err := checkImages(input.Images); err != nil {
		return nil, err
	}

	if err := s.requireLandlord(ctx, landlordID); err != nil {
		return nil, err
	}

	amenityIDs, err := s.resolveAmenities(ctx, input.AmenityNames)
	if err != nil {
		return nil, err
	}
	houseRuleIDs, err := s.resolveHouseRules(ctx, input.HouseRuleNames)
	if err != nil {
		return nil, err
	}

	targetTenant := model.TargetTenantAny
	if input.TargetTenant != nil {
		targetTenant = *input.TargetTenant
	}

	newProperty := &model.Property{
		ID:               uuid.New(),
		LandlordID:       landlordID,
		Title:            input.Title,
		Description:      input.Description,
		MonthlyPrice:     input.MonthlyPrice,
		SecurityDeposit:  input.SecurityDeposit,
		Address:          input.Address,
		Type:             input.Type,
		Furnishing:       input.Furnishing,
		Status:           model.PropertyStatusDraft,
		TargetTenant:     targetTenant,
		AvailabilityDate: dateOnly(input.AvailabilityDate),
	}
	span.SetAttributes(attribute.String("property_id", newProperty.ID.String()))

	err = s.store.Transaction(ctx, func(tx repository.PropertyStore) error {
		if err := tx.CreateProperty(ctx, newProperty); err != nil {
			return err
		}

		specs := input.Specifications
		if err := tx.SaveSpecifications(ctx, &model.PropertySpecifications{
			PropertyID:       newProperty.ID,
			Bedrooms:         specs.Bedrooms,
			Bathrooms:        specs.Bathrooms,
			Floor:            specs.Floor,
			ParkingSpaces:    specs.ParkingSpaces,
			AreaSqft:         specs.AreaSqft,
			DetailedLocation: specs.DetailedLocation,
		}); err != nil {
			return err
		}

		if input.DetailedLocation != nil {
			location := &model.PropertyDetailedLocation{PropertyID: newProperty.ID}
			input.DetailedLocation.apply(location)
			if err := tx.SaveDetailedLocation(ctx, location); err != nil {
				return err
			}
		}

		if err := tx.InsertImages(ctx, toImages(newProperty.ID, input.Images)); err != nil {
			return err
		}
		if err := tx.InsertAmenityLinks(ctx, newProperty.ID, amenityIDs); err != nil {
			return err
		}
		return tx.InsertHouseRuleLinks(ctx, newProperty.ID, houseRuleIDs)
	})
	if err != nil {
		return nil, s.failure(ctx, "create property", err)
	}

	logger.Ctx(ctx).Info("Property created",
		zap.String("property_id", newProperty.ID.String()),
		zap.String("landlord_id", landlordID.String()))

	return s.load(ctx, newProperty.ID)
}

// Update applies a partial update on behalf of the owning landlord
func (s *PropertyService) Update(ctx context.Context, id, landlordID uuid.UUID, input UpdatePropertyInput) (property *model.Property, err error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyService.Update")
	defer func() { finish(span, "update", err) }()
	span.SetAttributes(
		attribute.String("property_id", id.String()),
		attribute.String("landlord_id", landlordID.String()))

	input.normalize()
	if err := s.validateStruct(input); err != nil {
		return nil, err
	}
	if input.Images.IsSet() {
		for _, img := range input.Images.Values() {
			if err := s.validateStruct(img); err != nil {
				return nil, err
			}
		}
		if err := checkImages(input.Images.Values()); err != nil {
			return nil, err
		}
	}

	var amenityIDs, houseRuleIDs []uint
	if input.AmenityNames.IsSet() {
		if amenityIDs, err = s.resolveAmenities(ctx, input.AmenityNames.Values()); err != nil {
			return nil, err
		}
	}
	if input.HouseRuleNames.IsSet() {
		if houseRuleIDs, err = s.resolveHouseRules(ctx, input.HouseRuleNames.Values()); err != nil {
			return nil, err
		}
	}

	fields := input.scalarFields()
	fields["updated_at"] = s.now()
	locationPatch := input.locationPatch()

	err = s.store.Transaction(ctx, func(tx repository.PropertyStore) error {
		if err := s.requireOwner(ctx, tx, id, landlordID); err != nil {
			return err
		}

		affected, err := tx.UpdateFields(ctx, id, fields)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperror.ErrPropertyNotFound
		}

		if input.Images.IsSet() {
			if err := tx.DeleteImages(ctx, id); err != nil {
				return err
			}
			if err := tx.InsertImages(ctx, toImages(id, input.Images.Values())); err != nil {
				return err
			}
		}

		if input.AmenityNames.IsSet() {
			if err := tx.DeleteAmenityLinks(ctx, id); err != nil {
				return err
			}
			if err := tx.InsertAmenityLinks(ctx, id, amenityIDs); err != nil {
				return err
			}
		}

		if input.HouseRuleNames.IsSet() {
			if err := tx.DeleteHouseRuleLinks(ctx, id); err != nil {
				return err
			}
			if err := tx.InsertHouseRuleLinks(ctx, id, houseRuleIDs); err != nil {
				return err
			}
		}

		if input.Specifications != nil {
			specs, err := tx.FindSpecifications(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				specs, err = &model.PropertySpecifications{PropertyID: id}, nil
			}
			if err != nil {
				return err
			}
			input.Specifications.apply(specs)
			if err := tx.SaveSpecifications(ctx, specs); err != nil {
				return err
			}
		}

		if locationPatch != nil {
			location, err := tx.FindDetailedLocation(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				location, err = &model.PropertyDetailedLocation{PropertyID: id}, nil
			}
			if err != nil {
				return err
			}
			locationPatch.apply(location)
			if err := tx.SaveDetailedLocation(ctx, location); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, s.failure(ctx, "update property", err)
	}

	logger.Ctx(ctx).Info("Property updated",
		zap.String("property_id", id.String()),
		zap.Int("fields", len(fields)-1),
		zap.Bool("images_replaced", input.Images.IsSet()),
		zap.Bool("amenities_replaced", input.AmenityNames.IsSet()),
		zap.Bool("house_rules_replaced", input.HouseRuleNames.IsSet()))

	return s.load(ctx, id)
}

// GetByID returns a live property with all of its children
func (s *PropertyService) GetByID(ctx context.Context, id uuid.UUID) (property *model.Property, err error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyService.GetByID")
	defer func() { finish(span, "get", err) }()
	span.SetAttributes(attribute.String("property_id", id.String()))

	return s.load(ctx, id)
}

// List returns one page of live properties matching the filter, newest first
func (s *PropertyService) List(ctx context.Context, filter ListFilter) (result *ListResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyService.List")
	defer func() { finish(span, "list", err) }()

	filter.normalize()
	if err := s.validateStruct(filter); err != nil {
		return nil, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, apperror.ErrInvalidRange
	}

	query := repository.ListQuery{
		Status:           filter.Status,
		Type:             filter.Type,
		Furnishing:       filter.Furnishing,
		TargetTenant:     filter.TargetTenant,
		MinPrice:         filter.MinPrice,
		MaxPrice:         filter.MaxPrice,
		LandlordID:       filter.LandlordID,
		AvailabilityDate: dateOnly(filter.AvailabilityDate),
		Offset:           (filter.Page - 1) * filter.Limit,
		Limit:            filter.Limit,
	}

	items, total, err := s.store.List(ctx, query)
	if err != nil {
		return nil, s.failure(ctx, "list properties", err)
	}

	span.SetAttributes(attribute.Int64("total", total))

	return &ListResult{
		Items: items,
		Pagination: Pagination{
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		},
	}, nil
}

// Delete soft deletes a property on behalf of the owning landlord
func (s *PropertyService) Delete(ctx context.Context, id, landlordID uuid.UUID) (err error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyService.Delete")
	defer func() { finish(span, "delete", err) }()
	span.SetAttributes(
		attribute.String("property_id", id.String()),
		attribute.String("landlord_id", landlordID.String()))

	err = s.store.Transaction(ctx, func(tx repository.PropertyStore) error {
		if err := s.requireOwner(ctx, tx, id, landlordID); err != nil {
			return err
		}

		affected, err := tx.SoftDelete(ctx, id, s.now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperror.ErrPropertyNotFound
		}
		return nil
	})
	if err != nil {
		return s.failure(ctx, "delete property", err)
	}

	logger.Ctx(ctx).Info("Property deleted", zap.String("property_id", id.String()))
	return nil
}

func (s *PropertyService) requireLandlord(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.ErrUserNotFound
		}
		return s.failure(ctx, "load landlord", err)
	}
	if user.Role != model.RoleLandlord {
		return apperror.Forbidden("only landlords can create properties")
	}
	return nil
}

func (s *PropertyService) requireOwner(ctx context.Context, tx repository.PropertyStore, id, landlordID uuid.UUID) error {
	current, err := tx.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.ErrPropertyNotFound
		}
		return err
	}
	if current.LandlordID != landlordID {
		return apperror.Forbidden("you do not own this property")
	}
	return nil
}

func (s *PropertyService) resolveAmenities(ctx context.Context, names []string) ([]uint, error) {
	ids, missing, err := s.catalog.ResolveAmenities(ctx, names)
	if err != nil {
		return nil, s.failure(ctx, "resolve amenities", err)
	}
	if len(missing) > 0 {
		return nil, apperror.InvalidAmenityNames(missing)
	}
	return ids, nil
}

func (s *PropertyService) resolveHouseRules(ctx context.Context, names []string) ([]uint, error) {
	ids, missing, err := s.catalog.ResolveHouseRules(ctx, names)
	if err != nil {
		return nil, s.failure(ctx, "resolve house rules", err)
	}
	if len(missing) > 0 {
		return nil, apperror.InvalidHouseRuleNames(missing)
	}
	return ids, nil
}

func (s *PropertyService) load(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	property, err := s.store.LoadAggregate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrPropertyNotFound
		}
		return nil, s.failure(ctx, "load property", err)
	}
	return property, nil
}

// failure passes domain errors through and logs and wraps everything else
func (s *PropertyService) failure(ctx context.Context, action string, err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	logger.Ctx(ctx).Error("Failed to "+action, zap.Error(err))
	return errors.Wrap(err, action)
}

func toImages(propertyID uuid.UUID, images []ImageInput) []model.PropertyImage {
	out := make([]model.PropertyImage, 0, len(images))
	for _, img := range images {
		out = append(out, model.PropertyImage{
			PropertyID: propertyID,
			ImageURL:   img.URL,
			IsMain:     img.IsMain,
		})
	}
	return out
}

// finish records the outcome of an operation on its span and in the metrics
func finish(span trace.Span, operation string, err error) {
	defer span.End()

	if err == nil {
		prometheus.RecordPropertyOperation(operation, "success")
		return
	}

	kind := apperror.KindInternal
	if appErr, ok := apperror.As(err); ok {
		kind = appErr.Kind
	}
	prometheus.RecordPropertyOperation(operation, string(kind))

	span.SetAttributes(attribute.String("error.kind", string(kind)))
	if kind == apperror.KindInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
