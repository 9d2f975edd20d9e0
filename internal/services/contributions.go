package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kshadid/thegiftspace/internal/domain"
)

const recentContributionsLimit = 10

type ContributionsService struct {
	registries    domain.RegistryRepository
	funds         domain.FundRepository
	contributions domain.ContributionRepository
}

type ContributionsServiceDependencies struct {
	Registries    domain.RegistryRepository
	Funds         domain.FundRepository
	Contributions domain.ContributionRepository
}

func NewContributionsService(deps ContributionsServiceDependencies) domain.ContributionService {
	return &ContributionsService{
		registries:    deps.Registries,
		funds:         deps.Funds,
		contributions: deps.Contributions,
	}
}

// CreateContribution records a guest's gift. Guests are unauthenticated, so
// the only gate is that the target fund exists and is visible.
func (s *ContributionsService) CreateContribution(ctx context.Context, params domain.CreateContributionParams) (*domain.Contribution, error) {
	if params.Amount <= 0 {
		return nil, fmt.Errorf("contribution amount must be positive")
	}

	fund, err := s.funds.GetByID(ctx, params.FundID)
	if err != nil {
		return nil, err
	}
	if !fund.Visible {
		return nil, domain.ErrNotFound
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = "Anonymous"
	}

	contribution := &domain.Contribution{
		ID:        uuid.NewString(),
		FundID:    fund.ID,
		Name:      name,
		Amount:    params.Amount,
		Message:   strings.TrimSpace(params.Message),
		Public:    params.Public,
		Method:    params.Method,
		CreatedAt: time.Now(),
	}

	if err := s.contributions.Insert(ctx, contribution); err != nil {
		return nil, err
	}

	return contribution, nil
}

func (s *ContributionsService) ListContributions(ctx context.Context, fundID string) ([]domain.Contribution, error) {
	if _, err := s.funds.GetByID(ctx, fundID); err != nil {
		return nil, err
	}
	return s.contributions.ListByFund(ctx, fundID)
}

// GetAnalytics summarizes contribution activity across a registry's funds.
func (s *ContributionsService) GetAnalytics(ctx context.Context, userID, registryID string) (*domain.RegistryAnalytics, error) {
	funds, contributions, err := s.registryContributions(ctx, userID, registryID)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string, len(funds))
	for _, f := range funds {
		titles[f.ID] = f.Title
	}

	analytics := &domain.RegistryAnalytics{}

	byFund := make(map[string]*domain.FundTotal)
	byMethod := make(map[string]*domain.MethodTotal)
	byDay := make(map[string]float64)

	for _, c := range contributions {
		analytics.Total += c.Amount
		analytics.Count++

		ft, ok := byFund[c.FundID]
		if !ok {
			ft = &domain.FundTotal{FundID: c.FundID, Title: titles[c.FundID]}
			byFund[c.FundID] = ft
		}
		ft.Sum += c.Amount
		ft.Count++

		method := c.Method
		if method == "" {
			method = "other"
		}
		mt, ok := byMethod[method]
		if !ok {
			mt = &domain.MethodTotal{Method: method}
			byMethod[method] = mt
		}
		mt.Sum += c.Amount
		mt.Count++

		day := c.CreatedAt.Format("2006-01-02")
		byDay[day] += c.Amount
	}

	if analytics.Count > 0 {
		analytics.Average = analytics.Total / float64(analytics.Count)
	}

	for _, ft := range byFund {
		analytics.ByFund = append(analytics.ByFund, *ft)
	}
	sort.Slice(analytics.ByFund, func(i, j int) bool {
		return analytics.ByFund[i].Sum > analytics.ByFund[j].Sum
	})

	for _, mt := range byMethod {
		analytics.ByMethod = append(analytics.ByMethod, *mt)
	}
	sort.Slice(analytics.ByMethod, func(i, j int) bool {
		return analytics.ByMethod[i].Sum > analytics.ByMethod[j].Sum
	})

	for day, sum := range byDay {
		analytics.Daily = append(analytics.Daily, domain.DailyTotal{Date: day, Sum: sum})
	}
	sort.Slice(analytics.Daily, func(i, j int) bool {
		return analytics.Daily[i].Date < analytics.Daily[j].Date
	})

	// contributions are already sorted newest first
	if len(contributions) > recentContributionsLimit {
		analytics.Recent = contributions[:recentContributionsLimit]
	} else {
		analytics.Recent = contributions
	}

	return analytics, nil
}

// ExportCSV renders every contribution across the registry as CSV.
func (s *ContributionsService) ExportCSV(ctx context.Context, userID, registryID string) ([]byte, error) {
	funds, contributions, err := s.registryContributions(ctx, userID, registryID)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string, len(funds))
	for _, f := range funds {
		titles[f.ID] = f.Title
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "fund", "name", "amount", "method", "message"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, c := range contributions {
		record := []string{
			c.CreatedAt.Format(time.RFC3339),
			titles[c.FundID],
			c.Name,
			strconv.FormatFloat(c.Amount, 'f', 2, 64),
			c.Method,
			c.Message,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *ContributionsService) registryContributions(ctx context.Context, userID, registryID string) ([]domain.Fund, []domain.Contribution, error) {
	registry, err := s.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, nil, err
	}

	if !registry.CanEdit(userID) {
		return nil, nil, domain.ErrForbidden
	}

	funds, err := s.funds.ListByRegistry(ctx, registryID)
	if err != nil {
		return nil, nil, err
	}

	fundIDs := make([]string, 0, len(funds))
	for _, f := range funds {
		fundIDs = append(fundIDs, f.ID)
	}

	contributions, err := s.contributions.ListByFunds(ctx, fundIDs)
	if err != nil {
		return nil, nil, err
	}

	return funds, contributions, nil
}
