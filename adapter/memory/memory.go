// Package memory holds map-backed repositories. They carry the same
// uniqueness guarantees as the Postgres adapter so the services behave
// identically in tests and in --memory serve mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pressroom/domain"
)

type Store struct {
	mu          sync.Mutex
	subscribers map[string]domain.Subscriber // by id
	newsletters map[string]domain.Newsletter // by id
	admins      map[string]domain.Admin      // by id
	seq         map[string]int               // insertion order, ties in List
	nextSeq     int
}

func NewStore() *Store {
	return &Store{
		subscribers: make(map[string]domain.Subscriber),
		newsletters: make(map[string]domain.Newsletter),
		admins:      make(map[string]domain.Admin),
		seq:         make(map[string]int),
	}
}

func (s *Store) Create(ctx context.Context, sub domain.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.subscribers {
		if other.Email == sub.Email {
			return domain.ErrAlreadySubscribed
		}
	}
	s.subscribers[sub.ID] = sub
	s.seq[sub.ID] = s.nextSeq
	s.nextSeq++
	return nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (domain.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subscribers {
		if sub.Email == email {
			return sub, nil
		}
	}
	return domain.Subscriber{}, domain.ErrNotFound
}

func (s *Store) Update(ctx context.Context, sub domain.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[sub.ID]; !ok {
		return domain.ErrNotFound
	}
	s.subscribers[sub.ID] = sub
	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		out = append(out, sub)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.subscribers, id)
	delete(s.seq, id)
	return nil
}

func (s *Store) Count(ctx context.Context, activeOnly bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.subscribers {
		if !activeOnly || sub.Active {
			n++
		}
	}
	return n, nil
}

// Newsletters returns the newsletter repository view of the store.
func (s *Store) Newsletters() *NewsletterStore { return &NewsletterStore{s} }

type NewsletterStore struct{ *Store }

func (s *NewsletterStore) Create(ctx context.Context, n domain.Newsletter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.newsletters {
		if other.Slug == n.Slug {
			return domain.ErrSlugTaken
		}
	}
	s.newsletters[n.ID] = n
	s.seq[n.ID] = s.nextSeq
	s.nextSeq++
	return nil
}

func (s *NewsletterStore) Get(ctx context.Context, id string) (domain.Newsletter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.newsletters[id]
	if !ok {
		return domain.Newsletter{}, domain.ErrNotFound
	}
	return s.withAuthor(n), nil
}

func (s *NewsletterStore) GetBySlug(ctx context.Context, slug string) (domain.Newsletter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.newsletters {
		if n.Slug == slug {
			return s.withAuthor(n), nil
		}
	}
	return domain.Newsletter{}, domain.ErrNotFound
}

func (s *NewsletterStore) Update(ctx context.Context, n domain.Newsletter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.newsletters[n.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range s.newsletters {
		if other.ID != n.ID && other.Slug == n.Slug {
			return domain.ErrSlugTaken
		}
	}
	n.Author = nil
	s.newsletters[n.ID] = n
	return nil
}

func (s *NewsletterStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.newsletters[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.newsletters, id)
	delete(s.seq, id)
	return nil
}

func (s *NewsletterStore) List(ctx context.Context, f domain.NewsletterFilter) ([]domain.Newsletter, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.Newsletter
	for _, n := range s.newsletters {
		if f.PublishedOnly && !n.Published {
			continue
		}
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		all = append(all, s.withAuthor(n))
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pinned != all[j].Pinned {
			return all[i].Pinned
		}
		if c := comparePublishedAt(all[i].PublishedAt, all[j].PublishedAt); c != 0 {
			return c > 0
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := len(all)
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *NewsletterStore) Count(ctx context.Context, publishedOnly bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, nl := range s.newsletters {
		if !publishedOnly || nl.Published {
			n++
		}
	}
	return n, nil
}

// comparePublishedAt orders real dates before nulls, newer first.
func comparePublishedAt(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.After(*b):
		return 1
	case b.After(*a):
		return -1
	}
	return 0
}

func (s *NewsletterStore) withAuthor(n domain.Newsletter) domain.Newsletter {
	if n.AuthorID != "" {
		if a, ok := s.admins[n.AuthorID]; ok {
			n.Author = &domain.Author{Name: a.Name}
		}
	}
	return n
}

// Admins returns the admin repository view of the store.
func (s *Store) Admins() *AdminStore { return &AdminStore{s} }

type AdminStore struct{ *Store }

func (s *AdminStore) EnsureAdmin(ctx context.Context, username, name, role string) (domain.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Username == username {
			return a, nil
		}
	}
	a := domain.Admin{
		ID:        uuid.NewString(),
		Username:  username,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now(),
	}
	s.admins[a.ID] = a
	return a, nil
}
