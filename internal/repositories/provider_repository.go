package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tamircibul/internal/models"
)

type ProviderRepository struct {
	DB *sql.DB
}

const providerColumns = `
	p.id, p.user_id, p.company_name, p.service_type, p.description,
	p.city, p.district, p.address, p.latitude, p.longitude, p.working_hours,
	p.rating, p.total_reviews, p.is_verified, p.status, p.rejection_reason,
	u.name, u.phone, p.created_at, p.updated_at`

func (r *ProviderRepository) CreateProfile(ctx context.Context, p models.ProviderProfile) (models.ProviderProfile, error) {
	query := `
		INSERT INTO service_providers
			(user_id, company_name, service_type, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())
	`
	result, err := r.DB.ExecContext(ctx, query,
		p.UserID, p.CompanyName, p.ServiceType, nullIfEmpty(p.Description), p.Status,
	)
	if err != nil {
		return models.ProviderProfile{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.ProviderProfile{}, err
	}
	p.ID = int(id)
	return p, nil
}

func (r *ProviderRepository) GetProviderByID(ctx context.Context, id int) (models.ProviderProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM service_providers p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = ?`, providerColumns)
	return r.getProvider(ctx, query, id)
}

func (r *ProviderRepository) GetProviderByUserID(ctx context.Context, userID int) (models.ProviderProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM service_providers p
		JOIN users u ON p.user_id = u.id
		WHERE p.user_id = ?`, providerColumns)
	return r.getProvider(ctx, query, userID)
}

func (r *ProviderRepository) getProvider(ctx context.Context, query string, arg interface{}) (models.ProviderProfile, error) {
	p, err := scanProvider(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProviderProfile{}, models.ErrProviderNotFound
	}
	if err != nil {
		return models.ProviderProfile{}, err
	}
	return p, nil
}

// SearchProviders lists active providers matching the non-geographic filters.
// With f.Limit == 0 every match is returned (the geo path filters and
// paginates in memory); otherwise standard LIMIT/OFFSET applies and total is
// taken from a separate COUNT.
func (r *ProviderRepository) SearchProviders(ctx context.Context, f models.ProviderFilter) ([]models.ProviderProfile, int, error) {
	conditions := []string{"p.status = ?"}
	params := []interface{}{models.ProviderStatusActive}

	if f.ServiceType != "" && f.ServiceType != "all" {
		conditions = append(conditions, "p.service_type = ?")
		params = append(params, f.ServiceType)
	}
	if f.City != "" {
		conditions = append(conditions, "p.city = ?")
		params = append(params, f.City)
	}
	if f.District != "" {
		conditions = append(conditions, "p.district = ?")
		params = append(params, f.District)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		search := "(LOWER(p.company_name) LIKE LOWER(?) OR LOWER(p.description) LIKE LOWER(?) OR LOWER(u.name) LIKE LOWER(?)"
		params = append(params, like, like, like)
		// Colloquial trade terms also match the mapped category.
		if code := models.ServiceTypeForTerm(f.Search); code != "" {
			search += " OR p.service_type = ?"
			params = append(params, code)
		}
		search += ")"
		conditions = append(conditions, search)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")
	base := `FROM service_providers p JOIN users u ON p.user_id = u.id` + where

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) "+base, params...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s %s", providerColumns, base)
	switch f.Sort {
	case models.ProviderSortRating:
		query += " ORDER BY p.rating DESC, p.total_reviews DESC"
	case models.ProviderSortReviews:
		query += " ORDER BY p.total_reviews DESC, p.rating DESC"
	default:
		query += " ORDER BY p.created_at DESC"
	}
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		params = append(params, f.Limit, (f.Page-1)*f.Limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	providers := []models.ProviderProfile{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return providers, total, nil
}

func (r *ProviderRepository) UpdateProfile(ctx context.Context, userID int, upd models.ProviderUpdate) error {
	var (
		sets   []string
		params []interface{}
	)
	appendSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		params = append(params, value)
	}
	if upd.CompanyName != nil {
		appendSet("company_name", *upd.CompanyName)
	}
	if upd.Description != nil {
		appendSet("description", *upd.Description)
	}
	if upd.City != nil {
		appendSet("city", *upd.City)
	}
	if upd.District != nil {
		appendSet("district", *upd.District)
	}
	if upd.Address != nil {
		appendSet("address", *upd.Address)
	}
	if upd.Latitude != nil {
		appendSet("latitude", *upd.Latitude)
	}
	if upd.Longitude != nil {
		appendSet("longitude", *upd.Longitude)
	}
	if upd.WorkingHours != nil {
		appendSet("working_hours", *upd.WorkingHours)
	}
	if len(sets) == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE service_providers SET %s, updated_at = NOW() WHERE user_id = ?", strings.Join(sets, ", "))
	params = append(params, userID)

	result, err := r.DB.ExecContext(ctx, query, params...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Could also be a no-op write; confirm the profile exists.
		var id int
		if err := r.DB.QueryRowContext(ctx, `SELECT id FROM service_providers WHERE user_id = ?`, userID).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrProviderNotFound
			}
			return err
		}
	}
	return nil
}

// SetStatus moves a provider profile through its approval lifecycle.
func (r *ProviderRepository) SetStatus(ctx context.Context, id int, status string, verified bool, rejectionReason string) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE service_providers
		SET status = ?, is_verified = ?, rejection_reason = ?, updated_at = NOW()
		WHERE id = ?
	`, status, verified, nullIfEmpty(rejectionReason), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrProviderNotFound
	}
	return nil
}

// ListByStatus returns provider profiles in the given lifecycle status,
// oldest first, for the admin review queue.
func (r *ProviderRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]models.ProviderProfile, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM service_providers WHERE status = ?`, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM service_providers p
		JOIN users u ON p.user_id = u.id
		WHERE p.status = ?
		ORDER BY p.created_at ASC
		LIMIT ? OFFSET ?`, providerColumns)
	rows, err := r.DB.QueryContext(ctx, query, status, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	providers := []models.ProviderProfile{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return providers, total, nil
}

// CountByStatus returns provider counts per lifecycle status.
func (r *ProviderRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM service_providers GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanProvider(row rowScanner) (models.ProviderProfile, error) {
	var (
		p            models.ProviderProfile
		description  sql.NullString
		city         sql.NullString
		district     sql.NullString
		address      sql.NullString
		workingHours sql.NullString
		rejection    sql.NullString
		ownerPhone   sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.CompanyName, &p.ServiceType, &description,
		&city, &district, &address, &p.Latitude, &p.Longitude, &workingHours,
		&p.Rating, &p.TotalReviews, &p.IsVerified, &p.Status, &rejection,
		&p.OwnerName, &ownerPhone, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.ProviderProfile{}, err
	}
	p.Description = description.String
	p.City = city.String
	p.District = district.String
	p.Address = address.String
	p.WorkingHours = workingHours.String
	p.RejectionReason = rejection.String
	p.OwnerPhone = ownerPhone.String
	p.ServiceTypeName = models.ServiceTypeNames[p.ServiceType]
	return p, nil
}
