package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pressroom/domain"
)

// cmdSeed creates the default admin and three sample posts. Idempotent:
// records keyed by username/slug are left alone when they already exist.
func cmdSeed(args []string) error {
	repo, closeDB, err := openRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx := context.Background()
	admin, err := repo.Admins().EnsureAdmin(ctx, "admin", "Admin", "admin")
	if err != nil {
		return err
	}
	fmt.Printf("admin ready: %s\n", admin.Username)

	now := time.Now()
	posts := samplePosts(admin.ID, now)
	created := 0
	for _, p := range posts {
		_, err := repo.Newsletters().GetBySlug(ctx, p.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := repo.Newsletters().Create(ctx, p); err != nil {
			return err
		}
		created++
	}
	fmt.Printf("sample posts: %d created, %d already present\n", created, len(posts)-created)
	return nil
}

func samplePosts(authorID string, now time.Time) []domain.Newsletter {
	excerpt := func(s string) *string { return &s }
	post := func(title, slug, content string, ex *string, category string, tags []string, featured, pinned bool, publishedAt time.Time) domain.Newsletter {
		return domain.Newsletter{
			ID:          uuid.NewString(),
			Title:       title,
			Slug:        slug,
			Content:     content,
			Excerpt:     ex,
			Category:    category,
			Tags:        tags,
			Featured:    featured,
			Pinned:      pinned,
			Published:   true,
			PublishedAt: &publishedAt,
			AuthorID:    authorID,
			CreatedAt:   publishedAt,
			UpdatedAt:   publishedAt,
		}
	}

	return []domain.Newsletter{
		post(
			"Welcome to the Newsletter!",
			"welcome-to-the-newsletter",
			"# Welcome!\n\nWe're excited to launch the newsletter.\n\nThis is your go-to place for:\n\n- **Product updates** — be the first to know what shipped\n- **Announcements** — schedule changes, special events, and more\n- **Community highlights** — reader favorites and stories\n\nSubscribe and never miss an update.",
			excerpt("We're launching the newsletter — here's what to expect!"),
			domain.CategoryAnnouncement,
			[]string{"welcome", "launch"},
			true, true,
			now,
		),
		post(
			"What's New This Week",
			"whats-new-this-week",
			"# This Week\n\nA quick roundup of everything that changed:\n\n- Fresh content added to the archive\n- A faster publishing pipeline\n- Small fixes across the site\n\nMore next week!",
			excerpt("A quick roundup of everything that changed this week."),
			domain.CategoryUpdate,
			[]string{"changelog", "weekly"},
			false, false,
			now.Add(-24*time.Hour),
		),
		post(
			"Schedule & Community Events",
			"schedule-community-events",
			"# Upcoming Events\n\nHere's what's happening this month:\n\n## Weekly Schedule\n- **Monday–Friday**: regular publishing\n- **Saturday**: community picks\n- **Sunday**: archive highlights\n\nStay tuned for more details!",
			excerpt("Check out our weekly schedule and upcoming community events."),
			domain.CategoryBulletin,
			[]string{"schedule", "events", "community"},
			false, false,
			now.Add(-48*time.Hour),
		),
	}
}
