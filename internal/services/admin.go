package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/kshadid/thegiftspace/internal/domain"
	"github.com/kshadid/thegiftspace/internal/version"
)

type AdminService struct {
	users         domain.UserRepository
	registries    domain.RegistryRepository
	funds         domain.FundRepository
	contributions domain.ContributionRepository
	audit         domain.AuditRepository
}

type AdminServiceDependencies struct {
	Users         domain.UserRepository
	Registries    domain.RegistryRepository
	Funds         domain.FundRepository
	Contributions domain.ContributionRepository
	Audit         domain.AuditRepository
}

func NewAdminService(deps AdminServiceDependencies) domain.AdminService {
	return &AdminService{
		users:         deps.Users,
		registries:    deps.Registries,
		funds:         deps.Funds,
		contributions: deps.Contributions,
		audit:         deps.Audit,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	registries, err := s.registries.Count(ctx)
	if err != nil {
		return nil, err
	}

	funds, err := s.funds.Count(ctx)
	if err != nil {
		return nil, err
	}

	contributions, err := s.contributions.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.AdminStats{
		Users:         users,
		Registries:    registries,
		Funds:         funds,
		Contributions: contributions,
	}, nil
}

func (s *AdminService) Metrics(ctx context.Context) (*domain.AdminMetrics, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	totalRaised, err := s.contributions.TotalAmount(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.AdminMetrics{
		Stats:       *stats,
		TotalRaised: totalRaised,
		Version:     version.GetVersion(),
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	return s.users.List(ctx, limit)
}

func (s *AdminService) LookupUser(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *AdminService) ListRegistries(ctx context.Context, limit int) ([]domain.Registry, error) {
	return s.registries.List(ctx, limit)
}

func (s *AdminService) RegistryFunds(ctx context.Context, registryID string) ([]domain.Fund, error) {
	if _, err := s.registries.GetByID(ctx, registryID); err != nil {
		return nil, err
	}
	return s.funds.ListByRegistry(ctx, registryID)
}

// SetRegistryLock flips the admin lock on a registry. Locked registries
// reject every owner mutation until unlocked.
func (s *AdminService) SetRegistryLock(ctx context.Context, actorID string, params domain.SetRegistryLockParams) (*domain.Registry, error) {
	registry, err := s.registries.GetByID(ctx, params.RegistryID)
	if err != nil {
		return nil, err
	}

	registry.Locked = params.Locked
	if params.Locked {
		registry.LockReason = params.Reason
	} else {
		registry.LockReason = ""
	}
	registry.UpdatedAt = time.Now()

	if err := s.registries.Update(ctx, registry); err != nil {
		return nil, err
	}

	action := domain.AuditRegistryUnlocked
	if params.Locked {
		action = domain.AuditRegistryLocked
	}

	event := &domain.AuditEvent{
		ID:         xid.New().String(),
		RegistryID: registry.ID,
		ActorID:    actorID,
		Action:     action,
		Detail:     params.Reason,
		CreatedAt:  time.Now(),
	}
	_ = s.audit.Insert(ctx, event)

	return registry, nil
}
