package postgres

import (
	"context"

	"github.com/google/uuid"

	"pressroom/domain"
)

// Admins returns the admin repository view.
func (r *Repository) Admins() *AdminRepo { return &AdminRepo{r} }

type AdminRepo struct{ *Repository }

// EnsureAdmin inserts the admin if the username is free and returns the
// stored record either way.
func (r *AdminRepo) EnsureAdmin(ctx context.Context, username, name, role string) (domain.Admin, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO admins (id, username, name, role) VALUES ($1, $2, $3, $4) ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), username, name, role)
	if err != nil {
		return domain.Admin{}, err
	}
	var a domain.Admin
	row := r.db.QueryRowContext(ctx, `SELECT id, username, name, role, created_at FROM admins WHERE username = $1`, username)
	if err := row.Scan(&a.ID, &a.Username, &a.Name, &a.Role, &a.CreatedAt); err != nil {
		return domain.Admin{}, err
	}
	return a, nil
}
