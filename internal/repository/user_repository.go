package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuslane/learning-service/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	// GetByID never loads the password hash.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetCredentialsByID and GetByEmail include the password hash.
	GetCredentialsByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

const userColumns = `id, name, email, role, avatar, bio, department, year, employee_id,
               level, xp, streak, is_active, last_login, profile, created_at, updated_at`

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, avatar, bio, department, year, employee_id, is_active, profile)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, level, xp, streak, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Avatar,
		user.Bio,
		user.Department,
		user.Year,
		user.EmployeeID,
		user.IsActive,
		profileOrEmpty(user.Profile),
	).Scan(&user.ID, &user.Level, &user.XP, &user.Streak, &user.CreatedAt, &user.UpdatedAt)
	return mapError(err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, role=$3, avatar=$4, bio=$5, department=$6, year=$7,
            employee_id=$8, is_active=$9, profile=$10, updated_at=NOW()
        WHERE id=$11`

	return requireAffected(r.db.Exec(ctx, query,
		user.Name,
		user.Email,
		user.Role,
		user.Avatar,
		user.Bio,
		user.Department,
		user.Year,
		user.EmployeeID,
		user.IsActive,
		profileOrEmpty(user.Profile),
		user.ID,
	))
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id), false)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *userRepository) GetCredentialsByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE id=$1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id), true)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE email=$1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email), true)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC`,
		userColumns, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows, false)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return requireAffected(r.db.Exec(ctx, `UPDATE users SET last_login=$1 WHERE id=$2`, at, id))
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`, passwordHash, id))
}

func scanUser(row pgx.Row, withSecret bool) (*domain.User, error) {
	var user domain.User
	dest := []any{
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Avatar,
		&user.Bio,
		&user.Department,
		&user.Year,
		&user.EmployeeID,
		&user.Level,
		&user.XP,
		&user.Streak,
		&user.IsActive,
		&user.LastLogin,
		&user.Profile,
		&user.CreatedAt,
		&user.UpdatedAt,
	}
	if withSecret {
		dest = append(dest, &user.PasswordHash)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if user.Profile == nil {
		user.Profile = domain.Profile{}
	}
	return &user, nil
}

func profileOrEmpty(p domain.Profile) domain.Profile {
	if p == nil {
		return domain.Profile{}
	}
	return p
}
