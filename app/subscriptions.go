package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ribtoks/checkmail"

	"pressroom/domain"
)

// SubscribeResult names the transition Subscribe performed.
type SubscribeResult int

const (
	SubscribeCreated SubscribeResult = iota
	SubscribeReactivated
)

// SubscriptionService owns the subscriber lifecycle: create, reactivate,
// unsubscribe, admin list/delete. It re-reads the stored record on every
// call and leaves true mutual exclusion to the repository's unique email
// index.
type SubscriptionService struct {
	subs    domain.SubscriberRepository
	mailer  domain.Mailer
	baseURL string
	log     *slog.Logger
}

func NewSubscriptions(subs domain.SubscriberRepository, mailer domain.Mailer, baseURL string, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{subs: subs, mailer: mailer, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// NormalizeEmail is the identity rule for subscribers: trimmed, lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Subscribe creates a subscriber or reactivates an inactive/unconfirmed one.
// An active confirmed subscriber yields ErrAlreadySubscribed. New records
// are auto-confirmed for now; the confirm token is minted anyway for the
// future double-opt-in flow.
func (s *SubscriptionService) Subscribe(ctx context.Context, email, name string) (SubscribeResult, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", domain.ErrInvalid)
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return 0, fmt.Errorf("%w: invalid email", domain.ErrInvalid)
	}
	// checkmail allows dotless domains; subscriptions require local@domain.tld.
	if host := email[strings.LastIndex(email, "@")+1:]; !strings.Contains(host, ".") {
		return 0, fmt.Errorf("%w: invalid email", domain.ErrInvalid)
	}

	existing, err := s.subs.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Active && existing.Confirmed {
			return 0, domain.ErrAlreadySubscribed
		}
		// Reactivate in place. Email is the unique key, so the row is
		// reused and history (CreatedAt, unsub token) survives the cycle.
		existing.Active = true
		existing.Confirmed = false
		existing.ConfirmToken = NewToken()
		existing.UnsubscribedAt = nil
		if existing.Name == "" && name != "" {
			existing.Name = name
		}
		if err := s.subs.Update(ctx, existing); err != nil {
			return 0, err
		}
		s.sendWelcome(ctx, existing)
		return SubscribeReactivated, nil
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now()
		sub := domain.Subscriber{
			ID:           uuid.NewString(),
			Email:        email,
			Name:         name,
			Active:       true,
			Confirmed:    true,
			ConfirmToken: NewToken(),
			UnsubToken:   NewToken(),
			ConfirmedAt:  &now,
			CreatedAt:    now,
		}
		if err := s.subs.Create(ctx, sub); err != nil {
			return 0, err
		}
		s.sendWelcome(ctx, sub)
		return SubscribeCreated, nil
	default:
		return 0, err
	}
}

// Unsubscribe deactivates the subscriber. Unknown email is ErrNotFound;
// repeating it on an already-inactive record is a no-op success.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalid)
	}
	sub, err := s.subs.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !sub.Active {
		return nil
	}
	now := time.Now()
	sub.Active = false
	sub.UnsubscribedAt = &now
	return s.subs.Update(ctx, sub)
}

// List returns all subscribers, newest first.
func (s *SubscriptionService) List(ctx context.Context) ([]domain.Subscriber, error) {
	return s.subs.List(ctx)
}

// Delete hard-deletes a subscriber. A later subscribe with the same email
// starts over with a brand-new record.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	return s.subs.Delete(ctx, id)
}

// Counts returns total and active subscriber counts.
func (s *SubscriptionService) Counts(ctx context.Context) (total, active int, err error) {
	if total, err = s.subs.Count(ctx, false); err != nil {
		return 0, 0, err
	}
	if active, err = s.subs.Count(ctx, true); err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// sendWelcome delivers the welcome email. Outbound mail never fails the
// subscribe request; errors are logged and dropped.
func (s *SubscriptionService) sendWelcome(ctx context.Context, sub domain.Subscriber) {
	unsub := s.baseURL + "/unsubscribe?email=" + url.QueryEscape(sub.Email)
	if err := s.mailer.Send(ctx, sub.Email, "Thanks for subscribing!", welcomeHTML(sub.Name, unsub)); err != nil {
		s.log.Error("welcome email failed", "email", sub.Email, "err", err)
		return
	}
	s.log.Info("welcome email sent", "email", sub.Email)
}

func welcomeHTML(name, unsubURL string) string {
	greeting := "Welcome!"
	if name != "" {
		greeting = "Welcome, " + name + "!"
	}
	return fmt.Sprintf(`<html>
<body>
  <h1>%s</h1>
  <p>Thank you for subscribing to our newsletter.</p>
  <p><a href="%s">Unsubscribe</a></p>
</body>
</html>`, greeting, unsubURL)
}
