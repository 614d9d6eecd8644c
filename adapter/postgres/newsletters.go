package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pressroom/domain"
)

const newsletterCols = `n.id, n.title, n.slug, n.content, n.excerpt, n.category, n.tags, n.featured, n.pinned, n.published, n.published_at, n.cover_image, n.author_id, n.created_at, n.updated_at, a.name`

// Newsletters returns the newsletter repository view.
func (r *Repository) Newsletters() *NewsletterRepo { return &NewsletterRepo{r} }

type NewsletterRepo struct{ *Repository }

func (r *NewsletterRepo) Create(ctx context.Context, n domain.Newsletter) error {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO newsletters (id, title, slug, content, excerpt, category, tags, featured, pinned, published, published_at, cover_image, author_id, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		n.ID, n.Title, n.Slug, n.Content, n.Excerpt, n.Category, tags, n.Featured, n.Pinned, n.Published, n.PublishedAt, n.CoverImage, nullStr(n.AuthorID), n.CreatedAt, n.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrSlugTaken
	}
	return err
}

func (r *NewsletterRepo) Get(ctx context.Context, id string) (domain.Newsletter, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+newsletterCols+` FROM newsletters n LEFT JOIN admins a ON a.id = n.author_id WHERE n.id = $1`, id)
	return scanNewsletter(row)
}

func (r *NewsletterRepo) GetBySlug(ctx context.Context, slug string) (domain.Newsletter, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+newsletterCols+` FROM newsletters n LEFT JOIN admins a ON a.id = n.author_id WHERE n.slug = $1`, slug)
	return scanNewsletter(row)
}

func (r *NewsletterRepo) Update(ctx context.Context, n domain.Newsletter) error {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE newsletters SET title = $2, slug = $3, content = $4, excerpt = $5, category = $6, tags = $7, featured = $8, pinned = $9, published = $10, published_at = $11, cover_image = $12, updated_at = $13 WHERE id = $1`,
		n.ID, n.Title, n.Slug, n.Content, n.Excerpt, n.Category, tags, n.Featured, n.Pinned, n.Published, n.PublishedAt, n.CoverImage, n.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrSlugTaken
	}
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

func (r *NewsletterRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM newsletters WHERE id = $1`, id)
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

func (r *NewsletterRepo) List(ctx context.Context, f domain.NewsletterFilter) ([]domain.Newsletter, int, error) {
	where := ""
	var args []any
	add := func(cond string, val any) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		if val != nil {
			args = append(args, val)
			cond = fmt.Sprintf(cond, len(args))
		}
		where += cond
	}
	if f.PublishedOnly {
		add("n.published", nil)
	}
	if f.Category != "" {
		add("n.category = $%d", f.Category)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM newsletters n`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArgs := append(args, f.Limit, (f.Page-1)*f.Limit)
	q := `SELECT ` + newsletterCols + ` FROM newsletters n LEFT JOIN admins a ON a.id = n.author_id` + where +
		fmt.Sprintf(` ORDER BY n.pinned DESC, n.published_at DESC NULLS LAST, n.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, q, limitArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []domain.Newsletter
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (r *NewsletterRepo) Count(ctx context.Context, publishedOnly bool) (int, error) {
	q := `SELECT count(*) FROM newsletters`
	if publishedOnly {
		q += ` WHERE published`
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanNewsletter(row scanner) (domain.Newsletter, error) {
	var n domain.Newsletter
	var excerpt, tags, coverImage, authorID, authorName sql.NullString
	var publishedAt sql.NullTime
	err := row.Scan(&n.ID, &n.Title, &n.Slug, &n.Content, &excerpt, &n.Category, &tags, &n.Featured, &n.Pinned, &n.Published, &publishedAt, &coverImage, &authorID, &n.CreatedAt, &n.UpdatedAt, &authorName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Newsletter{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Newsletter{}, err
	}
	if excerpt.Valid {
		n.Excerpt = &excerpt.String
	}
	if coverImage.Valid {
		n.CoverImage = &coverImage.String
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		n.PublishedAt = &t
	}
	if authorID.Valid {
		n.AuthorID = authorID.String
	}
	if authorName.Valid {
		n.Author = &domain.Author{Name: authorName.String}
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &n.Tags); err != nil {
			return domain.Newsletter{}, fmt.Errorf("decode tags for %s: %w", n.ID, err)
		}
	}
	return n, nil
}

// encodeTags serializes the ordered tag list; empty stays NULL.
func encodeTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
