package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tamircibul/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `u.id, u.name, u.email, u.phone, u.password, u.role, u.status, u.created_at, u.updated_at`

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (name, email, phone, password, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	result, err := r.DB.ExecContext(ctx, query,
		user.Name, nullIfEmpty(user.Email), nullIfEmpty(user.Phone),
		user.Password, user.Role, user.Status,
	)
	if err != nil {
		return models.User{}, translateDuplicateError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = int(id)
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = ?`, userColumns)
	return r.getUser(ctx, query, id)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.email = ?`, userColumns)
	return r.getUser(ctx, query, email)
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.phone = ?`, userColumns)
	return r.getUser(ctx, query, phone)
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg interface{}) (models.User, error) {
	var (
		user  models.User
		email sql.NullString
		phone sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &email, &phone, &user.Password,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	user.Email = email.String
	user.Phone = phone.String
	return user, nil
}

func (r *UserRepository) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error) {
	var (
		conditions []string
		params     []interface{}
	)
	if f.Role != "" {
		conditions = append(conditions, "u.role = ?")
		params = append(params, f.Role)
	}
	if f.Status != "" {
		conditions = append(conditions, "u.status = ?")
		params = append(params, f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conditions = append(conditions, "(u.name LIKE ? OR u.email LIKE ? OR u.phone LIKE ?)")
		params = append(params, like, like, like)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users u"+where, params...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users u%s ORDER BY u.created_at DESC LIMIT ? OFFSET ?`, userColumns, where)
	params = append(params, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var (
			user  models.User
			email sql.NullString
			phone sql.NullString
		)
		err := rows.Scan(&user.ID, &user.Name, &email, &phone, &user.Password,
			&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		user.Email = email.String
		user.Phone = phone.String
		user.Password = ""
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET status = ?, updated_at = NOW() WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password = ?, updated_at = NOW() WHERE id = ?`, passwordHash, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int, name, email, phone string) error {
	var (
		sets   []string
		params []interface{}
	)
	if name != "" {
		sets = append(sets, "name = ?")
		params = append(params, name)
	}
	if email != "" {
		sets = append(sets, "email = ?")
		params = append(params, email)
	}
	if phone != "" {
		sets = append(sets, "phone = ?")
		params = append(params, phone)
	}
	if len(sets) == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE users SET %s, updated_at = NOW() WHERE id = ?", strings.Join(sets, ", "))
	params = append(params, id)
	if _, err := r.DB.ExecContext(ctx, query, params...); err != nil {
		return translateDuplicateError(err)
	}
	return nil
}

// Sessions back the refresh-token flow; one row per issued refresh token.

func (r *UserRepository) SetSession(ctx context.Context, session models.Session) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (user_id, role, refresh_token, expires_at, created_at)
		VALUES (?, ?, ?, ?, NOW())
	`, session.UserID, session.Role, session.RefreshToken, session.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var session models.Session
	err := r.DB.QueryRowContext(ctx, `
		SELECT user_id, role, refresh_token, expires_at
		FROM sessions WHERE refresh_token = ?
	`, refreshToken).Scan(&session.UserID, &session.Role, &session.RefreshToken, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, models.ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *UserRepository) DeleteSessions(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// CountByRole returns user counts per role for the admin dashboard.
func (r *UserRepository) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			role string
			n    int
		)
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

// CountRecentRegistrations counts accounts created within the last N days.
func (r *UserRepository) CountRecentRegistrations(ctx context.Context, days int) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE created_at >= NOW() - INTERVAL ? DAY`, days).Scan(&n)
	return n, err
}
