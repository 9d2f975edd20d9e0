package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kshadid/thegiftspace/internal/domain"
)

type contributionsFixture struct {
	service       domain.ContributionService
	registries    *memRegistryRepo
	funds         *memFundRepo
	contributions *memContributionRepo
	registry      *domain.Registry
	honeymoon     *domain.Fund
	hidden        *domain.Fund
}

func newContributionsFixture(t *testing.T) *contributionsFixture {
	t.Helper()

	registries := newMemRegistryRepo()
	funds := newMemFundRepo()
	contributions := newMemContributionRepo()

	registry := &domain.Registry{
		ID:      "reg_1",
		OwnerID: "user_1",
		Slug:    "sara-omar",
	}
	require.NoError(t, registries.Insert(context.Background(), registry))

	honeymoon := &domain.Fund{ID: "fund_1", RegistryID: "reg_1", Title: "Honeymoon", Goal: 5000, Visible: true}
	hidden := &domain.Fund{ID: "fund_2", RegistryID: "reg_1", Title: "Surprise", Goal: 1000, Visible: false}
	for _, f := range []*domain.Fund{honeymoon, hidden} {
		_, err := funds.Upsert(context.Background(), f)
		require.NoError(t, err)
	}

	service := NewContributionsService(ContributionsServiceDependencies{
		Registries:    registries,
		Funds:         funds,
		Contributions: contributions,
	})

	return &contributionsFixture{
		service:       service,
		registries:    registries,
		funds:         funds,
		contributions: contributions,
		registry:      registry,
		honeymoon:     honeymoon,
		hidden:        hidden,
	}
}

func TestCreateContribution(t *testing.T) {
	f := newContributionsFixture(t)

	contribution, err := f.service.CreateContribution(context.Background(), domain.CreateContributionParams{
		FundID:  "fund_1",
		Name:    "  Aisha  ",
		Amount:  250,
		Method:  "card",
		Message: "Congrats!",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, contribution.ID)
	assert.Equal(t, "Aisha", contribution.Name)
	assert.Equal(t, 250.0, contribution.Amount)

	listed, err := f.service.ListContributions(context.Background(), "fund_1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, contribution.ID, listed[0].ID)
}

func TestCreateContribution_AnonymousDefault(t *testing.T) {
	f := newContributionsFixture(t)

	contribution, err := f.service.CreateContribution(context.Background(), domain.CreateContributionParams{
		FundID: "fund_1",
		Amount: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", contribution.Name)
}

func TestCreateContribution_Rejections(t *testing.T) {
	f := newContributionsFixture(t)

	_, err := f.service.CreateContribution(context.Background(), domain.CreateContributionParams{
		FundID: "fund_1",
		Amount: 0,
	})
	assert.Error(t, err)

	_, err = f.service.CreateContribution(context.Background(), domain.CreateContributionParams{
		FundID: "missing",
		Amount: 100,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Hidden funds are unreachable for guests.
	_, err = f.service.CreateContribution(context.Background(), domain.CreateContributionParams{
		FundID: "fund_2",
		Amount: 100,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func (f *contributionsFixture) seed(t *testing.T, fundID, name string, amount float64, method string, at time.Time) {
	t.Helper()
	require.NoError(t, f.contributions.Insert(context.Background(), &domain.Contribution{
		ID:        name + "-" + fundID,
		FundID:    fundID,
		Name:      name,
		Amount:    amount,
		Method:    method,
		CreatedAt: at,
	}))
}

func TestGetAnalytics(t *testing.T) {
	f := newContributionsFixture(t)

	day1 := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)

	f.seed(t, "fund_1", "Aisha", 300, "card", day1)
	f.seed(t, "fund_1", "Omar", 100, "", day1.Add(time.Hour))
	f.seed(t, "fund_2", "Lina", 200, "cash", day2)

	analytics, err := f.service.GetAnalytics(context.Background(), "user_1", "reg_1")
	require.NoError(t, err)

	assert.Equal(t, 600.0, analytics.Total)
	assert.Equal(t, int64(3), analytics.Count)
	assert.Equal(t, 200.0, analytics.Average)

	// Funds ordered by amount raised, descending, with titles resolved.
	require.Len(t, analytics.ByFund, 2)
	assert.Equal(t, "Honeymoon", analytics.ByFund[0].Title)
	assert.Equal(t, 400.0, analytics.ByFund[0].Sum)
	assert.Equal(t, int64(2), analytics.ByFund[0].Count)
	assert.Equal(t, "Surprise", analytics.ByFund[1].Title)

	// An empty payment method is bucketed as "other".
	methods := make(map[string]float64)
	for _, m := range analytics.ByMethod {
		methods[m.Method] = m.Sum
	}
	assert.Equal(t, map[string]float64{"card": 300, "other": 100, "cash": 200}, methods)

	// Daily buckets ascend by date.
	require.Len(t, analytics.Daily, 2)
	assert.Equal(t, domain.DailyTotal{Date: "2026-06-01", Sum: 400}, analytics.Daily[0])
	assert.Equal(t, domain.DailyTotal{Date: "2026-06-02", Sum: 200}, analytics.Daily[1])

	// Recent runs newest first.
	require.Len(t, analytics.Recent, 3)
	assert.Equal(t, "Lina", analytics.Recent[0].Name)
}

func TestGetAnalytics_RecentCapped(t *testing.T) {
	f := newContributionsFixture(t)

	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		f.seed(t, "fund_1", "Guest", 10, "card", base.Add(time.Duration(i)*time.Minute))
	}

	analytics, err := f.service.GetAnalytics(context.Background(), "user_1", "reg_1")
	require.NoError(t, err)

	assert.Equal(t, int64(15), analytics.Count)
	assert.Len(t, analytics.Recent, 10)
}

func TestGetAnalytics_Forbidden(t *testing.T) {
	f := newContributionsFixture(t)

	_, err := f.service.GetAnalytics(context.Background(), "stranger", "reg_1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestExportCSV(t *testing.T) {
	f := newContributionsFixture(t)

	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f.seed(t, "fund_1", "Aisha", 250.5, "card", at)

	data, err := f.service.ExportCSV(context.Background(), "user_1", "reg_1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "date,fund,name,amount,method,message", lines[0])
	assert.Equal(t, "2026-06-01T10:00:00Z,Honeymoon,Aisha,250.50,card,", lines[1])
}

func TestExportCSV_Empty(t *testing.T) {
	f := newContributionsFixture(t)

	data, err := f.service.ExportCSV(context.Background(), "user_1", "reg_1")
	require.NoError(t, err)

	assert.Equal(t, "date,fund,name,amount,method,message", strings.TrimSpace(string(data)))
}
