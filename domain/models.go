package domain

import "time"

// Subscriber is a mailing-list member, keyed by normalized email.
// ConfirmToken is regenerated on every (re)subscribe but nothing reads it
// yet: subscribers are auto-confirmed at creation until a real
// email-confirmation flow exists.
type Subscriber struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name,omitempty"`
	Active         bool       `json:"active"`
	Confirmed      bool       `json:"confirmed"`
	ConfirmToken   string     `json:"confirmToken"`
	UnsubToken     string     `json:"unsubToken"`
	ConfirmedAt    *time.Time `json:"confirmedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Newsletter categories.
const (
	CategoryUpdate       = "update"
	CategoryAnnouncement = "announcement"
	CategoryPromotion    = "promotion"
	CategoryBulletin     = "bulletin"
)

// ValidCategory reports whether c is one of the fixed newsletter categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryUpdate, CategoryAnnouncement, CategoryPromotion, CategoryBulletin:
		return true
	}
	return false
}

type Newsletter struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     *string    `json:"excerpt"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Featured    bool       `json:"featured"`
	Pinned      bool       `json:"pinned"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt"`
	CoverImage  *string    `json:"coverImage"`
	AuthorID    string     `json:"authorId,omitempty"`
	Author      *Author    `json:"author,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Author is the resolved name of a newsletter's admin author. AuthorID is a
// weak reference: deleting the admin leaves the newsletter authorless.
type Author struct {
	Name string `json:"name"`
}

type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewsletterFilter narrows List results. Page is 1-based.
type NewsletterFilter struct {
	PublishedOnly bool
	Category      string
	Page          int
	Limit         int
}
