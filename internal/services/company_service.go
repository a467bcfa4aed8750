package services

import (
	"context"
	"fmt"

	"invoicer/internal/core"
	"invoicer/internal/log"
	"invoicer/internal/repository"
)

// CompanyService reads and replaces the company profile.
type CompanyService struct {
	repo   *repository.Repository
	logger *log.Logger
}

func NewCompanyService(repo *repository.Repository, opts ...Option) *CompanyService {
	o := buildOptions(opts)
	return &CompanyService{repo: repo, logger: o.logger.WithComponent(log.ComponentCompany)}
}

func (s *CompanyService) Get(ctx context.Context) (core.CompanyProfile, error) {
	p, ok := s.repo.GetCompanyProfile(ctx)
	if !ok {
		return core.CompanyProfile{}, fmt.Errorf("company profile: %w", core.ErrNotFound)
	}
	return p, nil
}

// Save validates p and overwrites the stored profile. Empty payment details are dropped.
func (s *CompanyService) Save(ctx context.Context, p core.CompanyProfile) (core.CompanyProfile, error) {
	if !p.HasPaymentDetails() {
		p.PaymentDetails = nil
	}
	if err := p.Validate(); err != nil {
		return core.CompanyProfile{}, err
	}
	if err := s.repo.SaveCompanyProfile(ctx, p); err != nil {
		return core.CompanyProfile{}, fmt.Errorf("save company: %w", err)
	}
	s.logger.InfoContext(ctx, "Company profile updated", "payment_details", p.PaymentDetails != nil)
	return p, nil
}
