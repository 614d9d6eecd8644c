package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pressroom/domain"
)

const defaultPageSize = 10

// Draft is the input for creating a newsletter.
type Draft struct {
	Title      string
	Content    string
	Excerpt    string
	Category   string
	Tags       []string
	Featured   bool
	Pinned     bool
	Published  bool
	CoverImage string
	AuthorID   string
}

// Patch is a partial update. Nil fields are untouched. Excerpt and
// CoverImage pointing at an empty string clear the stored value; Title,
// Content and Category ignore empty strings rather than blanking the post.
type Patch struct {
	Title      *string
	Content    *string
	Excerpt    *string
	Category   *string
	Tags       *[]string
	Featured   *bool
	Pinned     *bool
	Published  *bool
	CoverImage *string
}

// Page is one page of newsletters plus paging totals.
type Page struct {
	Items      []domain.Newsletter
	Total      int
	Page       int
	TotalPages int
}

// PublicationService owns the newsletter draft/publish workflow: slug
// derivation and collision handling, the publish-timestamp rule, partial
// updates and the public/privileged read paths.
type PublicationService struct {
	posts domain.NewsletterRepository
}

func NewPublications(posts domain.NewsletterRepository) *PublicationService {
	return &PublicationService{posts: posts}
}

// Create validates the draft, derives a unique slug from the title and
// stores the record. Publishing at creation stamps PublishedAt immediately.
func (p *PublicationService) Create(ctx context.Context, d Draft) (domain.Newsletter, error) {
	if d.Title == "" || d.Content == "" {
		return domain.Newsletter{}, fmt.Errorf("%w: title and content are required", domain.ErrInvalid)
	}
	if d.Category == "" {
		d.Category = domain.CategoryUpdate
	}
	if !domain.ValidCategory(d.Category) {
		return domain.Newsletter{}, fmt.Errorf("%w: unknown category %q", domain.ErrInvalid, d.Category)
	}

	now := time.Now()
	slug, err := p.uniqueSlug(ctx, d.Title, "", now)
	if err != nil {
		return domain.Newsletter{}, err
	}

	n := domain.Newsletter{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Slug:      slug,
		Content:   d.Content,
		Category:  d.Category,
		Tags:      d.Tags,
		Featured:  d.Featured,
		Pinned:    d.Pinned,
		Published: d.Published,
		AuthorID:  d.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if d.Excerpt != "" {
		n.Excerpt = &d.Excerpt
	}
	if d.CoverImage != "" {
		n.CoverImage = &d.CoverImage
	}
	if d.Published {
		n.PublishedAt = &now
	}
	if err := p.posts.Create(ctx, n); err != nil {
		return domain.Newsletter{}, err
	}
	return n, nil
}

// Update applies a partial patch. A changed title regenerates the slug,
// checked against all other records. PublishedAt is stamped only on the
// first false-to-true publish transition; unpublishing and republishing
// carry the original timestamp forward.
func (p *PublicationService) Update(ctx context.Context, id string, patch Patch) (domain.Newsletter, error) {
	n, err := p.posts.Get(ctx, id)
	if err != nil {
		return domain.Newsletter{}, err
	}

	now := time.Now()
	if patch.Title != nil && *patch.Title != "" && *patch.Title != n.Title {
		slug, err := p.uniqueSlug(ctx, *patch.Title, n.ID, now)
		if err != nil {
			return domain.Newsletter{}, err
		}
		n.Title = *patch.Title
		n.Slug = slug
	}
	if patch.Content != nil && *patch.Content != "" {
		n.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		if *patch.Excerpt == "" {
			n.Excerpt = nil
		} else {
			n.Excerpt = patch.Excerpt
		}
	}
	if patch.CoverImage != nil {
		if *patch.CoverImage == "" {
			n.CoverImage = nil
		} else {
			n.CoverImage = patch.CoverImage
		}
	}
	if patch.Category != nil && *patch.Category != "" {
		if !domain.ValidCategory(*patch.Category) {
			return domain.Newsletter{}, fmt.Errorf("%w: unknown category %q", domain.ErrInvalid, *patch.Category)
		}
		n.Category = *patch.Category
	}
	if patch.Tags != nil {
		n.Tags = *patch.Tags
	}
	if patch.Featured != nil {
		n.Featured = *patch.Featured
	}
	if patch.Pinned != nil {
		n.Pinned = *patch.Pinned
	}
	if patch.Published != nil {
		wasPublished := n.Published
		n.Published = *patch.Published
		// Stamped exactly once: the first time the stored value flips to
		// published. A republish keeps the original date.
		if n.Published && !wasPublished && n.PublishedAt == nil {
			n.PublishedAt = &now
		}
	}
	n.UpdatedAt = now

	if err := p.posts.Update(ctx, n); err != nil {
		return domain.Newsletter{}, err
	}
	return n, nil
}

// Delete removes the record; author and subscriber data are untouched.
func (p *PublicationService) Delete(ctx context.Context, id string) error {
	return p.posts.Delete(ctx, id)
}

// Get returns one newsletter by id, drafts included. Draft visibility on
// the public site is the caller's concern.
func (p *PublicationService) Get(ctx context.Context, id string) (domain.Newsletter, error) {
	return p.posts.Get(ctx, id)
}

// GetBySlug is the public post lookup. Drafts are invisible unless the
// caller proved privilege.
func (p *PublicationService) GetBySlug(ctx context.Context, slug string, privileged bool) (domain.Newsletter, error) {
	n, err := p.posts.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Newsletter{}, err
	}
	if !n.Published && !privileged {
		return domain.Newsletter{}, domain.ErrNotFound
	}
	return n, nil
}

// List returns one page ordered pinned desc, publishedAt desc (nulls last),
// createdAt desc. Unprivileged callers only ever see published records.
func (p *PublicationService) List(ctx context.Context, f domain.NewsletterFilter, privileged bool) (Page, error) {
	if !privileged {
		f.PublishedOnly = true
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	items, total, err := p.posts.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		TotalPages: (total + f.Limit - 1) / f.Limit,
	}, nil
}

// Counts returns total and published newsletter counts.
func (p *PublicationService) Counts(ctx context.Context) (total, published int, err error) {
	if total, err = p.posts.Count(ctx, false); err != nil {
		return 0, 0, err
	}
	if published, err = p.posts.Count(ctx, true); err != nil {
		return 0, 0, err
	}
	return total, published, nil
}

// uniqueSlug slugifies the title and, when a different record already owns
// the result, appends a base-36 millisecond suffix. Best effort only; the
// unique index has the final say.
func (p *PublicationService) uniqueSlug(ctx context.Context, title, selfID string, now time.Time) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("%w: title yields an empty slug", domain.ErrInvalid)
	}
	owner, err := p.posts.GetBySlug(ctx, slug)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return slug, nil
	case err != nil:
		return "", err
	case owner.ID == selfID:
		return slug, nil
	}
	return slug + "-" + slugSuffix(now), nil
}
