package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/kshadid/thegiftspace/internal/domain"
)

type RegistryService struct {
	registries    domain.RegistryRepository
	funds         domain.FundRepository
	contributions domain.ContributionRepository
	users         domain.UserRepository
	audit         domain.AuditRepository
}

type RegistryServiceDependencies struct {
	Registries    domain.RegistryRepository
	Funds         domain.FundRepository
	Contributions domain.ContributionRepository
	Users         domain.UserRepository
	Audit         domain.AuditRepository
}

func NewRegistryService(deps RegistryServiceDependencies) domain.RegistryService {
	return &RegistryService{
		registries:    deps.Registries,
		funds:         deps.Funds,
		contributions: deps.Contributions,
		users:         deps.Users,
		audit:         deps.Audit,
	}
}

// CreateRegistry creates a registry under a normalized slug. The normalized
// slug is returned to the caller so editing clients can adopt it.
func (s *RegistryService) CreateRegistry(ctx context.Context, params domain.CreateRegistryParams) (*domain.Registry, error) {
	if strings.TrimSpace(params.CoupleNames) == "" {
		return nil, fmt.Errorf("couple names are required")
	}

	normalized := slug.Make(params.Slug)
	if normalized == "" {
		normalized = slug.Make(params.CoupleNames)
	}
	if normalized == "" {
		return nil, fmt.Errorf("slug is required")
	}

	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "AED"
	}

	now := time.Now()
	registry := &domain.Registry{
		ID:          xid.New().String(),
		OwnerID:     params.OwnerID,
		CoupleNames: strings.TrimSpace(params.CoupleNames),
		EventDate:   params.EventDate,
		Location:    params.Location,
		Currency:    currency,
		HeroImage:   params.HeroImage,
		Slug:        normalized,
		Theme:       params.Theme,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.registries.Insert(ctx, registry); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, registry.ID, params.OwnerID, domain.AuditRegistryCreated, "slug="+normalized)

	return registry, nil
}

func (s *RegistryService) UpdateRegistry(ctx context.Context, userID, registryID string, params domain.UpdateRegistryParams) (*domain.Registry, error) {
	registry, err := s.editableRegistry(ctx, userID, registryID)
	if err != nil {
		return nil, err
	}

	if params.CoupleNames != "" {
		registry.CoupleNames = strings.TrimSpace(params.CoupleNames)
	}
	if params.EventDate != "" {
		registry.EventDate = params.EventDate
	}
	if params.Location != "" {
		registry.Location = params.Location
	}
	if params.Currency != "" {
		registry.Currency = strings.ToUpper(strings.TrimSpace(params.Currency))
	}
	if params.HeroImage != "" {
		registry.HeroImage = params.HeroImage
	}
	if params.Theme != "" {
		registry.Theme = params.Theme
	}
	if params.Slug != "" {
		registry.Slug = slug.Make(params.Slug)
	}
	registry.UpdatedAt = time.Now()

	if err := s.registries.Update(ctx, registry); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, registry.ID, userID, domain.AuditRegistryUpdated, "")

	return registry, nil
}

func (s *RegistryService) GetRegistry(ctx context.Context, userID, registryID string) (*domain.Registry, error) {
	registry, err := s.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, err
	}

	if !registry.CanEdit(userID) {
		return nil, domain.ErrForbidden
	}

	return registry, nil
}

func (s *RegistryService) ListMyRegistries(ctx context.Context, userID string) ([]domain.Registry, error) {
	return s.registries.ListByUser(ctx, userID)
}

// GetPublicView builds the guest-facing page for a slug: visible funds in
// display order, each decorated with its raised total and progress percent.
func (s *RegistryService) GetPublicView(ctx context.Context, slugValue string) (*domain.PublicRegistryView, error) {
	registry, err := s.registries.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}

	funds, err := s.funds.ListByRegistry(ctx, registry.ID)
	if err != nil {
		return nil, err
	}

	fundIDs := make([]string, 0, len(funds))
	for _, f := range funds {
		fundIDs = append(fundIDs, f.ID)
	}

	sums, err := s.contributions.SumsByFund(ctx, fundIDs)
	if err != nil {
		return nil, err
	}

	var totalRaised, totalGoal float64
	publicFunds := make([]domain.PublicFund, 0, len(funds))
	for _, f := range funds {
		raised := sums[f.ID]
		totalRaised += raised
		totalGoal += f.Goal

		if !f.Visible {
			continue
		}

		progress := 0
		if f.Goal > 0 {
			progress = int(math.Round(raised / f.Goal * 100))
			if progress > 100 {
				progress = 100
			}
		}

		publicFunds = append(publicFunds, domain.PublicFund{
			Fund:     f,
			Raised:   raised,
			Progress: progress,
		})
	}

	// Pinned funds lead; within each group the couple's ordering holds.
	sort.SliceStable(publicFunds, func(i, j int) bool {
		return publicFunds[i].Pinned && !publicFunds[j].Pinned
	})

	return &domain.PublicRegistryView{
		Registry: *registry,
		Funds:    publicFunds,
		Totals: map[string]float64{
			"raised": totalRaised,
			"goal":   totalGoal,
		},
	}, nil
}

func (s *RegistryService) AddCollaborator(ctx context.Context, userID, registryID, email string) (*domain.Registry, error) {
	registry, err := s.editableRegistry(ctx, userID, registryID)
	if err != nil {
		return nil, err
	}

	if registry.OwnerID != userID {
		return nil, domain.ErrForbidden
	}

	collaborator, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	if collaborator.ID == registry.OwnerID {
		return registry, nil
	}
	for _, id := range registry.Collaborators {
		if id == collaborator.ID {
			return registry, nil
		}
	}

	registry.Collaborators = append(registry.Collaborators, collaborator.ID)
	registry.UpdatedAt = time.Now()

	if err := s.registries.Update(ctx, registry); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, registry.ID, userID, domain.AuditCollaboratorAdded, "collaborator="+collaborator.ID)

	return registry, nil
}

func (s *RegistryService) RemoveCollaborator(ctx context.Context, userID, registryID, collaboratorID string) (*domain.Registry, error) {
	registry, err := s.editableRegistry(ctx, userID, registryID)
	if err != nil {
		return nil, err
	}

	if registry.OwnerID != userID {
		return nil, domain.ErrForbidden
	}

	filtered := registry.Collaborators[:0]
	for _, id := range registry.Collaborators {
		if id != collaboratorID {
			filtered = append(filtered, id)
		}
	}
	registry.Collaborators = filtered
	registry.UpdatedAt = time.Now()

	if err := s.registries.Update(ctx, registry); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, registry.ID, userID, domain.AuditCollaboratorRemoved, "collaborator="+collaboratorID)

	return registry, nil
}

func (s *RegistryService) ListAuditEvents(ctx context.Context, userID, registryID string) ([]domain.AuditEvent, error) {
	registry, err := s.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, err
	}

	if !registry.CanEdit(userID) {
		return nil, domain.ErrForbidden
	}

	return s.audit.ListByRegistry(ctx, registryID, 100)
}

// editableRegistry loads a registry and checks the caller may mutate it,
// including the admin lock.
func (s *RegistryService) editableRegistry(ctx context.Context, userID, registryID string) (*domain.Registry, error) {
	registry, err := s.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, err
	}

	if !registry.CanEdit(userID) {
		return nil, domain.ErrForbidden
	}

	if registry.Locked {
		return nil, domain.ErrRegistryLocked
	}

	return registry, nil
}

// Audit failures must never fail the mutation they describe.
func (s *RegistryService) recordAudit(ctx context.Context, registryID, actorID, action, detail string) {
	event := &domain.AuditEvent{
		ID:         xid.New().String(),
		RegistryID: registryID,
		ActorID:    actorID,
		Action:     action,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}

	if err := s.audit.Insert(ctx, event); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("Failed to record audit event")
	}
}
