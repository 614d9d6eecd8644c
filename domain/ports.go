package domain

import "context"

// SubscriberRepository is the persistence port for mailing-list members.
// Create returns ErrAlreadySubscribed when the email is taken; the unique
// index at the storage layer is the authoritative guard, not the caller's
// read-before-write.
type SubscriberRepository interface {
	Create(ctx context.Context, s Subscriber) error
	GetByEmail(ctx context.Context, email string) (Subscriber, error)
	Update(ctx context.Context, s Subscriber) error
	List(ctx context.Context) ([]Subscriber, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, activeOnly bool) (int, error)
}

// NewsletterRepository is the persistence port for posts. Create and Update
// return ErrSlugTaken on a slug collision. List returns the page of items
// plus the total match count before paging.
type NewsletterRepository interface {
	Create(ctx context.Context, n Newsletter) error
	Get(ctx context.Context, id string) (Newsletter, error)
	GetBySlug(ctx context.Context, slug string) (Newsletter, error)
	Update(ctx context.Context, n Newsletter) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f NewsletterFilter) ([]Newsletter, int, error)
	Count(ctx context.Context, publishedOnly bool) (int, error)
}

// AdminRepository manages the admin accounts newsletters point at.
type AdminRepository interface {
	EnsureAdmin(ctx context.Context, username, name, role string) (Admin, error)
}

// Mailer sends a single HTML email. Implementations must not be required
// for requests to succeed; a disabled mailer logs and returns nil.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}
