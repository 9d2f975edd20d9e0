package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/kshadid/thegiftspace/internal/domain"
)

type FundsService struct {
	registries domain.RegistryRepository
	funds      domain.FundRepository
	audit      domain.AuditRepository
}

type FundsServiceDependencies struct {
	Registries domain.RegistryRepository
	Funds      domain.FundRepository
	Audit      domain.AuditRepository
}

func NewFundsService(deps FundsServiceDependencies) domain.FundService {
	return &FundsService{
		registries: deps.Registries,
		funds:      deps.Funds,
		audit:      deps.Audit,
	}
}

// BulkUpsertFunds applies the client's full fund list in one pass. Fund ids
// are taken as the client sent them, so re-sending the same list is
// idempotent and reports zero creations the second time.
func (s *FundsService) BulkUpsertFunds(ctx context.Context, userID, registryID string, funds []domain.Fund) (*domain.UpsertFundsResult, error) {
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

	now := time.Now()
	result := &domain.UpsertFundsResult{}

	for i := range funds {
		fund := &funds[i]

		if strings.TrimSpace(fund.Title) == "" {
			return nil, fmt.Errorf("fund title is required")
		}
		if fund.Goal < 0 {
			return nil, fmt.Errorf("fund goal must not be negative")
		}

		if fund.ID == "" {
			fund.ID = xid.New().String()
		}
		fund.RegistryID = registryID
		if fund.CreatedAt.IsZero() {
			fund.CreatedAt = now
		}
		fund.UpdatedAt = now

		created, err := s.funds.Upsert(ctx, fund)
		if err != nil {
			return nil, err
		}

		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	event := &domain.AuditEvent{
		ID:         xid.New().String(),
		RegistryID: registryID,
		ActorID:    userID,
		Action:     domain.AuditFundsUpserted,
		Detail:     fmt.Sprintf("created=%d updated=%d", result.Created, result.Updated),
		CreatedAt:  now,
	}
	if err := s.audit.Insert(ctx, event); err != nil {
		log.Warn().Err(err).Str("action", event.Action).Msg("Failed to record audit event")
	}

	return result, nil
}

func (s *FundsService) ListFunds(ctx context.Context, userID, registryID string) ([]domain.Fund, error) {
	registry, err := s.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, err
	}

	if !registry.CanEdit(userID) {
		return nil, domain.ErrForbidden
	}

	return s.funds.ListByRegistry(ctx, registryID)
}
