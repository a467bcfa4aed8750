package repository

import (
	"context"

	"invoicer/internal/core"
)

// GetCompanyProfile returns the stored profile. The bool is false when none was saved.
func (r *Repository) GetCompanyProfile(ctx context.Context) (core.CompanyProfile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var company *core.CompanyProfile
	if !r.get(ctx, KeyCompany, &company) || company == nil {
		return core.CompanyProfile{}, false
	}
	return *company, true
}

// SaveCompanyProfile overwrites the profile wholesale.
func (r *Repository) SaveCompanyProfile(ctx context.Context, p core.CompanyProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.set(ctx, KeyCompany, p); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Company profile saved", "name", p.Name)
	return nil
}
