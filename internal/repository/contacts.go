package repository

import (
	"context"

	"invoicer/internal/core"
	"invoicer/internal/log"
)

// SaveContact upserts c by id, keeping the position of an existing entry.
func (r *Repository) SaveContact(ctx context.Context, c core.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts := r.contacts(ctx)
	replaced := false
	for i := range contacts {
		if contacts[i].ID == c.ID {
			contacts[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		contacts = append(contacts, c)
	}
	if err := r.set(ctx, KeyContacts, contacts); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Contact saved", log.FieldContactID, c.ID, "replaced", replaced)
	return nil
}

// GetContacts returns every contact in insertion order, or an empty slice.
func (r *Repository) GetContacts(ctx context.Context) []core.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contacts(ctx)
}

func (r *Repository) contacts(ctx context.Context) []core.Contact {
	var contacts []core.Contact
	if !r.get(ctx, KeyContacts, &contacts) || contacts == nil {
		return []core.Contact{}
	}
	return contacts
}

func (r *Repository) GetContact(ctx context.Context, id string) (core.Contact, bool) {
	for _, c := range r.GetContacts(ctx) {
		if c.ID == id {
			return c, true
		}
	}
	return core.Contact{}, false
}

// DeleteContact removes the contact. Invoices keep their own client snapshot.
func (r *Repository) DeleteContact(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts := r.contacts(ctx)
	kept := contacts[:0]
	for _, c := range contacts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if err := r.set(ctx, KeyContacts, kept); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Contact deleted", log.FieldContactID, id, "removed", len(contacts)-len(kept))
	return nil
}
