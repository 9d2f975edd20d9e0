package domain

import (
	"context"
	"time"
)

// Contribution is a guest's gift towards a fund.
type Contribution struct {
	ID        string    `json:"id" bson:"id"`
	FundID    string    `json:"fund_id" bson:"fund_id"`
	Name      string    `json:"name" bson:"name"`
	Amount    float64   `json:"amount" bson:"amount"`
	Message   string    `json:"message" bson:"message"`
	Public    bool      `json:"public" bson:"public"`
	Method    string    `json:"method" bson:"method"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type CreateContributionParams struct {
	FundID  string
	Name    string
	Amount  float64
	Message string
	Public  bool
	Method  string
}

// FundTotal is a per-fund contribution aggregate.
type FundTotal struct {
	FundID string  `json:"fund_id" bson:"_id"`
	Title  string  `json:"title" bson:"title"`
	Sum    float64 `json:"sum" bson:"sum"`
	Count  int64   `json:"count" bson:"count"`
}

// MethodTotal is a per-payment-method contribution aggregate.
type MethodTotal struct {
	Method string  `json:"method" bson:"_id"`
	Sum    float64 `json:"sum" bson:"sum"`
	Count  int64   `json:"count" bson:"count"`
}

// DailyTotal is a per-day contribution aggregate for the activity chart.
type DailyTotal struct {
	Date string  `json:"date" bson:"_id"`
	Sum  float64 `json:"sum" bson:"sum"`
}

// RegistryAnalytics summarizes contribution activity for the dashboard.
type RegistryAnalytics struct {
	Total    float64        `json:"total"`
	Count    int64          `json:"count"`
	Average  float64        `json:"average"`
	ByFund   []FundTotal    `json:"by_fund"`
	ByMethod []MethodTotal  `json:"by_method"`
	Recent   []Contribution `json:"recent"`
	Daily    []DailyTotal   `json:"daily"`
}

type ContributionRepository interface {
	Insert(ctx context.Context, contribution *Contribution) error
	ListByFund(ctx context.Context, fundID string) ([]Contribution, error)
	ListByFunds(ctx context.Context, fundIDs []string) ([]Contribution, error)
	SumsByFund(ctx context.Context, fundIDs []string) (map[string]float64, error)
	Count(ctx context.Context) (int64, error)
	TotalAmount(ctx context.Context) (float64, error)
}

type ContributionService interface {
	CreateContribution(ctx context.Context, params CreateContributionParams) (*Contribution, error)
	ListContributions(ctx context.Context, fundID string) ([]Contribution, error)
	GetAnalytics(ctx context.Context, userID, registryID string) (*RegistryAnalytics, error)
	ExportCSV(ctx context.Context, userID, registryID string) ([]byte, error)
}
