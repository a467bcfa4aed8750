package services

import (
	"context"
	"fmt"
	"time"

	"invoicer/internal/core"
	"invoicer/internal/log"
	"invoicer/internal/repository"
)

// ContactService manages the address book.
type ContactService struct {
	repo   *repository.Repository
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func NewContactService(repo *repository.Repository, opts ...Option) *ContactService {
	o := buildOptions(opts)
	return &ContactService{
		repo:   repo,
		logger: o.logger.WithComponent(log.ComponentContact),
		now:    o.now,
		newID:  o.newID,
	}
}

// Save validates and upserts c. New contacts get an id and a creation time;
// the creation time of an existing contact is kept.
func (s *ContactService) Save(ctx context.Context, c core.Contact) (core.Contact, error) {
	if c.ID == "" {
		c.ID = s.newID()
	}
	if c.Type == "" {
		c.Type = core.ContactClient
	}
	if c.CreatedAt.IsZero() {
		if existing, ok := s.repo.GetContact(ctx, c.ID); ok {
			c.CreatedAt = existing.CreatedAt
		} else {
			c.CreatedAt = s.now().UTC()
		}
	}
	if err := c.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Contact rejected", log.FieldContactID, c.ID, log.FieldError, err)
		return core.Contact{}, err
	}
	if err := s.repo.SaveContact(ctx, c); err != nil {
		return core.Contact{}, fmt.Errorf("save contact: %w", err)
	}
	return c, nil
}

func (s *ContactService) Get(ctx context.Context, id string) (core.Contact, error) {
	c, ok := s.repo.GetContact(ctx, id)
	if !ok {
		return core.Contact{}, fmt.Errorf("contact %q: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *ContactService) List(ctx context.Context) []core.Contact {
	return s.repo.GetContacts(ctx)
}

// Delete removes the contact. Invoices billed to it keep their own copy.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteContact(ctx, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
