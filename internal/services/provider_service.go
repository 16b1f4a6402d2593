package services

import (
	"context"
	"sort"

	"tamircibul/internal/geo"
	"tamircibul/internal/models"
)

// ProviderStore is the persistence surface for the provider directory.
type ProviderStore interface {
	GetProviderByID(ctx context.Context, id int) (models.ProviderProfile, error)
	GetProviderByUserID(ctx context.Context, userID int) (models.ProviderProfile, error)
	SearchProviders(ctx context.Context, f models.ProviderFilter) ([]models.ProviderProfile, int, error)
	UpdateProfile(ctx context.Context, userID int, upd models.ProviderUpdate) error
}

// ProviderStatsStore exposes the request-side numbers shown on the provider
// dashboard.
type ProviderStatsStore interface {
	StatsForProvider(ctx context.Context, providerID int) (models.ProviderStats, error)
}

type ProviderService struct {
	Store ProviderStore
	Stats ProviderStatsStore
}

const defaultRadiusKm = 10.0

// Search runs the public directory search. Without coordinates the store
// filters, sorts and paginates. With coordinates the store returns every
// non-geographic match and the distance filter, nearest-first ordering and
// pagination happen here, on top of the haversine distance.
func (s *ProviderService) Search(ctx context.Context, f models.ProviderFilter) ([]models.ProviderProfile, models.Pagination, error) {
	v := models.NewValidationError()
	if f.ServiceType != "" && f.ServiceType != "all" && !models.ValidServiceType(f.ServiceType) {
		v.Add("service_type", "unknown service type")
	}
	switch f.Sort {
	case "", models.ProviderSortNewest, models.ProviderSortRating, models.ProviderSortReviews:
	default:
		v.Add("sort", "sort must be one of newest, rating, reviews")
	}
	if (f.Lat == nil) != (f.Lng == nil) {
		v.Add("latitude", "latitude and longitude must be supplied together")
	}
	if f.Lat != nil && (*f.Lat < -90 || *f.Lat > 90) {
		v.Add("latitude", "latitude must be between -90 and 90")
	}
	if f.Lng != nil && (*f.Lng < -180 || *f.Lng > 180) {
		v.Add("longitude", "longitude must be between -180 and 180")
	}
	// Radius 0 is legal: it keeps only exact-coordinate matches.
	if f.RadiusKm != nil && (*f.RadiusKm < 0 || *f.RadiusKm > 500) {
		v.Add("radius", "radius must be between 0 and 500 km")
	}
	if v.HasErrors() {
		return nil, models.Pagination{}, v
	}
	if f.Lat != nil && f.RadiusKm == nil {
		radius := defaultRadiusKm
		f.RadiusKm = &radius
	}

	f.Page, f.Limit = normalizePage(f.Page, f.Limit)

	if !f.HasGeo() {
		providers, total, err := s.Store.SearchProviders(ctx, f)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return providers, paginate(f.Page, f.Limit, total), nil
	}

	all := f
	all.Page, all.Limit = 0, 0
	candidates, _, err := s.Store.SearchProviders(ctx, all)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	matched := make([]models.ProviderProfile, 0, len(candidates))
	for _, p := range candidates {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		if !geo.WithinRadiusKm(*f.Lat, *f.Lng, *p.Latitude, *p.Longitude, *f.RadiusKm) {
			continue
		}
		d := geo.HaversineKm(*f.Lat, *f.Lng, *p.Latitude, *p.Longitude)
		p.DistanceKm = &d
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return *matched[i].DistanceKm < *matched[j].DistanceKm
	})

	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], paginate(f.Page, f.Limit, total), nil
}

// GetProvider returns a single directory entry. Profiles outside the active
// status are invisible to the public, same as in search.
func (s *ProviderService) GetProvider(ctx context.Context, id int) (models.ProviderProfile, error) {
	p, err := s.Store.GetProviderByID(ctx, id)
	if err != nil {
		return models.ProviderProfile{}, err
	}
	if p.Status != models.ProviderStatusActive {
		return models.ProviderProfile{}, models.ErrProviderNotFound
	}
	return p, nil
}

func (s *ProviderService) MyProfile(ctx context.Context, actor models.Actor) (models.ProviderProfile, error) {
	if actor.Role != models.RoleService {
		return models.ProviderProfile{}, models.ErrUnauthorized
	}
	return s.Store.GetProviderByUserID(ctx, actor.ID)
}

func (s *ProviderService) UpdateMyProfile(ctx context.Context, actor models.Actor, upd models.ProviderUpdate) (models.ProviderProfile, error) {
	if actor.Role != models.RoleService {
		return models.ProviderProfile{}, models.ErrUnauthorized
	}
	v := models.NewValidationError()
	if upd.CompanyName != nil && *upd.CompanyName == "" {
		v.Add("company_name", "company name cannot be empty")
	}
	if upd.Latitude != nil && (*upd.Latitude < -90 || *upd.Latitude > 90) {
		v.Add("latitude", "latitude must be between -90 and 90")
	}
	if upd.Longitude != nil && (*upd.Longitude < -180 || *upd.Longitude > 180) {
		v.Add("longitude", "longitude must be between -180 and 180")
	}
	if v.HasErrors() {
		return models.ProviderProfile{}, v
	}
	if err := s.Store.UpdateProfile(ctx, actor.ID, upd); err != nil {
		return models.ProviderProfile{}, err
	}
	return s.Store.GetProviderByUserID(ctx, actor.ID)
}

// Dashboard combines the provider's profile with its request breakdown.
func (s *ProviderService) Dashboard(ctx context.Context, actor models.Actor) (models.ProviderProfile, models.ProviderStats, error) {
	if actor.Role != models.RoleService {
		return models.ProviderProfile{}, models.ProviderStats{}, models.ErrUnauthorized
	}
	profile, err := s.Store.GetProviderByUserID(ctx, actor.ID)
	if err != nil {
		return models.ProviderProfile{}, models.ProviderStats{}, err
	}
	stats, err := s.Stats.StatsForProvider(ctx, actor.ID)
	if err != nil {
		return models.ProviderProfile{}, models.ProviderStats{}, err
	}
	stats.Rating = profile.Rating
	stats.TotalReviews = profile.TotalReviews
	return profile, stats, nil
}

// ServiceTypeOption is one entry of the public category listing.
type ServiceTypeOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ServiceTypes lists the supported categories with their display names.
func (s *ProviderService) ServiceTypes() []ServiceTypeOption {
	codes := []string{
		models.ServiceTypePlumbing, models.ServiceTypeElectrical, models.ServiceTypeCleaning,
		models.ServiceTypeAppliance, models.ServiceTypeComputer, models.ServiceTypePhone,
		models.ServiceTypeOther,
	}
	options := make([]ServiceTypeOption, 0, len(codes))
	for _, code := range codes {
		options = append(options, ServiceTypeOption{Code: code, Name: models.ServiceTypeNames[code]})
	}
	return options
}
