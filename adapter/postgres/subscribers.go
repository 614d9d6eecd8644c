package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pressroom/domain"
)

const subscriberCols = `id, email, name, active, confirmed, confirm_token, unsub_token, confirmed_at, unsubscribed_at, created_at`

func (r *Repository) Create(ctx context.Context, s domain.Subscriber) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO subscribers (`+subscriberCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.Email, s.Name, s.Active, s.Confirmed, s.ConfirmToken, s.UnsubToken, s.ConfirmedAt, s.UnsubscribedAt, s.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadySubscribed
	}
	return err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (domain.Subscriber, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+subscriberCols+` FROM subscribers WHERE email = $1`, email)
	return scanSubscriber(row)
}

func (r *Repository) Update(ctx context.Context, s domain.Subscriber) error {
	res, err := r.db.ExecContext(ctx, `UPDATE subscribers SET name = $2, active = $3, confirmed = $4, confirm_token = $5, unsub_token = $6, confirmed_at = $7, unsubscribed_at = $8 WHERE id = $1`,
		s.ID, s.Name, s.Active, s.Confirmed, s.ConfirmToken, s.UnsubToken, s.ConfirmedAt, s.UnsubscribedAt)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+subscriberCols+` FROM subscribers ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context, activeOnly bool) (int, error) {
	q := `SELECT count(*) FROM subscribers`
	if activeOnly {
		q += ` WHERE active`
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row scanner) (domain.Subscriber, error) {
	var s domain.Subscriber
	var confirmedAt, unsubscribedAt sql.NullTime
	err := row.Scan(&s.ID, &s.Email, &s.Name, &s.Active, &s.Confirmed, &s.ConfirmToken, &s.UnsubToken, &confirmedAt, &unsubscribedAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subscriber{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Subscriber{}, err
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		s.ConfirmedAt = &t
	}
	if unsubscribedAt.Valid {
		t := unsubscribedAt.Time
		s.UnsubscribedAt = &t
	}
	return s, nil
}
