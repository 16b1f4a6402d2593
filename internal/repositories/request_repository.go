package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"tamircibul/internal/lifecycle"
	"tamircibul/internal/models"
)

type RequestRepository struct {
	DB *sql.DB
}

const requestColumns = `
	r.id, r.customer_id, r.service_provider_id, r.service_type, r.title, r.description,
	r.address, r.city, r.district, r.latitude, r.longitude,
	r.preferred_date, r.preferred_time, r.budget_min, r.budget_max,
	r.status, r.priority, r.images, r.notes,
	r.rating, r.rating_comment, r.rated_at,
	r.has_complaint, r.complaint_reason, r.complaint_description, r.complaint_date,
	r.cancellation_reason, r.rejection_reason, r.rejected_at,
	r.completed_at, r.cancelled_at, r.created_at, r.updated_at`

func (r *RequestRepository) CreateRequest(ctx context.Context, req models.ServiceRequest) (models.ServiceRequest, error) {
	images, err := marshalImages(req.Images)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	query := `
		INSERT INTO service_requests
			(customer_id, service_provider_id, service_type, title, description,
			 address, city, district, latitude, longitude,
			 preferred_date, preferred_time, budget_min, budget_max,
			 status, priority, images, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	result, err := r.DB.ExecContext(ctx, query,
		req.CustomerID, req.ProviderID, req.ServiceType, req.Title, req.Description,
		req.Address, req.City, req.District, req.Latitude, req.Longitude,
		req.PreferredDate, nullIfEmpty(req.PreferredTime), req.BudgetMin, req.BudgetMax,
		req.Status, req.Priority, images, nullIfEmpty(req.Notes),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return models.ServiceRequest{}, models.ErrProviderNotFound
		}
		return models.ServiceRequest{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.ServiceRequest{}, err
	}
	return r.GetRequestByID(ctx, int(id))
}

func (r *RequestRepository) GetRequestByID(ctx context.Context, id int) (models.ServiceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_requests r WHERE r.id = ?`, requestColumns)
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ServiceRequest{}, models.ErrRequestNotFound
	}
	if err != nil {
		return models.ServiceRequest{}, err
	}
	return req, nil
}

func (r *RequestRepository) ListRequests(ctx context.Context, f models.RequestFilter) ([]models.ServiceRequest, int, error) {
	var (
		conditions []string
		params     []interface{}
	)
	if f.CustomerID > 0 {
		conditions = append(conditions, "r.customer_id = ?")
		params = append(params, f.CustomerID)
	}
	if f.ProviderID > 0 {
		conditions = append(conditions, "r.service_provider_id = ?")
		params = append(params, f.ProviderID)
	}
	if f.Status != "" {
		conditions = append(conditions, "r.status = ?")
		params = append(params, f.Status)
	}
	if f.ServiceType != "" {
		conditions = append(conditions, "r.service_type = ?")
		params = append(params, f.ServiceType)
	}
	if f.City != "" {
		conditions = append(conditions, "r.city = ?")
		params = append(params, f.City)
	}
	if f.District != "" {
		conditions = append(conditions, "r.district = ?")
		params = append(params, f.District)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM service_requests r" + where
	if err := r.DB.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM service_requests r%s ORDER BY r.created_at DESC LIMIT ? OFFSET ?`, requestColumns, where)
	params = append(params, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := []models.ServiceRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Accept claims a pending request for the given provider. The condition
// doubles as the compare-and-set guard: the write only lands when the request
// is still pending and either unassigned or already assigned to this provider.
func (r *RequestRepository) Accept(ctx context.Context, id, providerID int) error {
	query := `
		UPDATE service_requests
		SET service_provider_id = ?, status = ?, updated_at = NOW()
		WHERE id = ? AND status = ?
		  AND (service_provider_id IS NULL OR service_provider_id = ?)
	`
	return r.guardedExec(ctx, query, providerID, lifecycle.StatusAccepted, id, lifecycle.StatusPending, providerID)
}

func (r *RequestRepository) Reject(ctx context.Context, id int, reason string) error {
	query := `
		UPDATE service_requests
		SET status = ?, rejection_reason = ?, rejected_at = NOW(), updated_at = NOW()
		WHERE id = ? AND status = ?
	`
	return r.guardedExec(ctx, query, lifecycle.StatusRejected, reason, id, lifecycle.StatusPending)
}

func (r *RequestRepository) Complete(ctx context.Context, id int) error {
	query := `
		UPDATE service_requests
		SET status = ?, completed_at = NOW(), updated_at = NOW()
		WHERE id = ? AND status = ?
	`
	return r.guardedExec(ctx, query, lifecycle.StatusCompleted, id, lifecycle.StatusAccepted)
}

func (r *RequestRepository) Cancel(ctx context.Context, id int, reason string) error {
	query := `
		UPDATE service_requests
		SET status = ?, cancellation_reason = ?, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = ? AND status IN (?, ?)
	`
	return r.guardedExec(ctx, query, lifecycle.StatusCancelled, reason, id, lifecycle.StatusPending, lifecycle.StatusAccepted)
}

func (r *RequestRepository) DeleteRequest(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM service_requests WHERE id = ? AND status IN (?, ?)`,
		id, lifecycle.StatusRejected, lifecycle.StatusCancelled)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrStatusConflict
	}
	return nil
}

// Rate writes the rating onto the request row and recomputes the provider's
// aggregate in the same transaction so concurrent ratings cannot lose updates.
// The rating write is guarded on status = accepted; a re-rate overwrites.
func (r *RequestRepository) Rate(ctx context.Context, id, providerID, rating int, comment string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE service_requests
		SET rating = ?, rating_comment = ?, rated_at = NOW(), updated_at = NOW()
		WHERE id = ? AND status = ?
	`, rating, nullIfEmpty(comment), id, lifecycle.StatusAccepted)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// MySQL reports zero affected rows when the new values equal the old
		// ones, so re-check the guard before calling it a conflict.
		var status string
		if err := tx.QueryRowContext(ctx, `SELECT status FROM service_requests WHERE id = ?`, id).Scan(&status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrRequestNotFound
			}
			return err
		}
		if status != lifecycle.StatusAccepted {
			return models.ErrStatusConflict
		}
	}

	var (
		avg   sql.NullFloat64
		count int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(rating), 0), COUNT(rating)
		FROM service_requests
		WHERE service_provider_id = ? AND rating IS NOT NULL
	`, providerID).Scan(&avg, &count)
	if err != nil {
		return err
	}

	rounded := math.Round(avg.Float64*100) / 100
	_, err = tx.ExecContext(ctx, `
		UPDATE service_providers
		SET rating = ?, total_reviews = ?, updated_at = NOW()
		WHERE user_id = ?
	`, rounded, count, providerID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *RequestRepository) SaveComplaint(ctx context.Context, id int, reason, description string) error {
	query := `
		UPDATE service_requests
		SET has_complaint = TRUE, complaint_reason = ?, complaint_description = ?,
		    complaint_date = NOW(), updated_at = NOW()
		WHERE id = ? AND status = ?
	`
	return r.guardedExec(ctx, query, reason, nullIfEmpty(description), id, lifecycle.StatusAccepted)
}

// StatsForProvider returns the per-status request breakdown for a provider.
func (r *RequestRepository) StatsForProvider(ctx context.Context, providerID int) (models.ProviderStats, error) {
	var stats models.ProviderStats
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(status = 'pending'), 0),
		       COALESCE(SUM(status = 'accepted'), 0),
		       COALESCE(SUM(status = 'completed'), 0),
		       COALESCE(SUM(status = 'cancelled'), 0)
		FROM service_requests
		WHERE service_provider_id = ?
	`
	err := r.DB.QueryRowContext(ctx, query, providerID).Scan(
		&stats.TotalRequests, &stats.PendingRequests, &stats.AcceptedRequests,
		&stats.CompletedJobs, &stats.CancelledRequests,
	)
	if err != nil {
		return models.ProviderStats{}, err
	}
	return stats, nil
}

// CountByStatus returns the global status breakdown for the admin dashboard.
func (r *RequestRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM service_requests GROUP BY status`)
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

func (r *RequestRepository) guardedExec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrStatusConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (models.ServiceRequest, error) {
	var (
		req           models.ServiceRequest
		images        sql.NullString
		preferredTime sql.NullString
		ratingComment sql.NullString
		complaintWhy  sql.NullString
		complaintDesc sql.NullString
		cancelReason  sql.NullString
		rejectReason  sql.NullString
		notes         sql.NullString
	)
	err := row.Scan(
		&req.ID, &req.CustomerID, &req.ProviderID, &req.ServiceType, &req.Title, &req.Description,
		&req.Address, &req.City, &req.District, &req.Latitude, &req.Longitude,
		&req.PreferredDate, &preferredTime, &req.BudgetMin, &req.BudgetMax,
		&req.Status, &req.Priority, &images, &notes,
		&req.Rating, &ratingComment, &req.RatedAt,
		&req.HasComplaint, &complaintWhy, &complaintDesc, &req.ComplaintDate,
		&cancelReason, &rejectReason, &req.RejectedAt,
		&req.CompletedAt, &req.CancelledAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	req.PreferredTime = preferredTime.String
	req.RatingComment = ratingComment.String
	req.ComplaintReason = complaintWhy.String
	req.ComplaintDescription = complaintDesc.String
	req.CancellationReason = cancelReason.String
	req.RejectionReason = rejectReason.String
	req.Notes = notes.String
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &req.Images); err != nil {
			return models.ServiceRequest{}, fmt.Errorf("decode images for request %d: %w", req.ID, err)
		}
	}
	return req, nil
}

func marshalImages(images []string) (interface{}, error) {
	if len(images) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
