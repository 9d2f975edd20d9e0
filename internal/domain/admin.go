package domain

import "context"

// AdminStats are whole-platform entity counts.
type AdminStats struct {
	Users         int64 `json:"users"`
	Registries    int64 `json:"registries"`
	Funds         int64 `json:"funds"`
	Contributions int64 `json:"contributions"`
}

// AdminMetrics are operational gauges exposed to the admin dashboard.
type AdminMetrics struct {
	Stats       AdminStats `json:"stats"`
	TotalRaised float64    `json:"total_raised"`
	Version     string     `json:"version"`
}

type SetRegistryLockParams struct {
	RegistryID string
	Locked     bool
	Reason     string
}

type AdminService interface {
	Stats(ctx context.Context) (*AdminStats, error)
	Metrics(ctx context.Context) (*AdminMetrics, error)
	ListUsers(ctx context.Context, limit int) ([]User, error)
	LookupUser(ctx context.Context, email string) (*User, error)
	ListRegistries(ctx context.Context, limit int) ([]Registry, error)
	RegistryFunds(ctx context.Context, registryID string) ([]Fund, error)
	SetRegistryLock(ctx context.Context, actorID string, params SetRegistryLockParams) (*Registry, error)
}
