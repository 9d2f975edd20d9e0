package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kshadid/thegiftspace/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memRegistryRepo struct {
	mu         sync.Mutex
	registries map[string]*domain.Registry
}

func newMemRegistryRepo() *memRegistryRepo {
	return &memRegistryRepo{registries: make(map[string]*domain.Registry)}
}

func (r *memRegistryRepo) Insert(ctx context.Context, registry *domain.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.registries {
		if existing.Slug == registry.Slug {
			return domain.ErrSlugTaken
		}
	}
	copied := *registry
	r.registries[registry.ID] = &copied
	return nil
}

func (r *memRegistryRepo) Update(ctx context.Context, registry *domain.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.registries[registry.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, existing := range r.registries {
		if id != registry.ID && existing.Slug == registry.Slug {
			return domain.ErrSlugTaken
		}
	}
	copied := *registry
	r.registries[registry.ID] = &copied
	return nil
}

func (r *memRegistryRepo) GetByID(ctx context.Context, id string) (*domain.Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	registry, ok := r.registries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *registry
	return &copied, nil
}

func (r *memRegistryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, registry := range r.registries {
		if registry.Slug == slug {
			copied := *registry
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memRegistryRepo) ListByUser(ctx context.Context, userID string) ([]domain.Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Registry
	for _, registry := range r.registries {
		if registry.CanEdit(userID) {
			out = append(out, *registry)
		}
	}
	return out, nil
}

func (r *memRegistryRepo) List(ctx context.Context, limit int) ([]domain.Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Registry
	for _, registry := range r.registries {
		out = append(out, *registry)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRegistryRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.registries)), nil
}

type memFundRepo struct {
	mu    sync.Mutex
	funds map[string]*domain.Fund
}

func newMemFundRepo() *memFundRepo {
	return &memFundRepo{funds: make(map[string]*domain.Fund)}
}

func (r *memFundRepo) Upsert(ctx context.Context, fund *domain.Fund) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.funds[fund.ID]
	copied := *fund
	r.funds[fund.ID] = &copied
	return !exists, nil
}

func (r *memFundRepo) GetByID(ctx context.Context, id string) (*domain.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fund, ok := r.funds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *fund
	return &copied, nil
}

func (r *memFundRepo) ListByRegistry(ctx context.Context, registryID string) ([]domain.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Fund
	for _, fund := range r.funds {
		if fund.RegistryID == registryID {
			out = append(out, *fund)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *memFundRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.funds)), nil
}

type memContributionRepo struct {
	mu            sync.Mutex
	contributions []domain.Contribution
}

func newMemContributionRepo() *memContributionRepo {
	return &memContributionRepo{}
}

func (r *memContributionRepo) Insert(ctx context.Context, contribution *domain.Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contributions = append(r.contributions, *contribution)
	return nil
}

func (r *memContributionRepo) ListByFund(ctx context.Context, fundID string) ([]domain.Contribution, error) {
	return r.ListByFunds(ctx, []string{fundID})
}

func (r *memContributionRepo) ListByFunds(ctx context.Context, fundIDs []string) ([]domain.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]bool, len(fundIDs))
	for _, id := range fundIDs {
		wanted[id] = true
	}

	var out []domain.Contribution
	for _, c := range r.contributions {
		if wanted[c.FundID] {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memContributionRepo) SumsByFund(ctx context.Context, fundIDs []string) (map[string]float64, error) {
	contributions, err := r.ListByFunds(ctx, fundIDs)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	for _, c := range contributions {
		sums[c.FundID] += c.Amount
	}
	return sums, nil
}

func (r *memContributionRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.contributions)), nil
}

func (r *memContributionRepo) TotalAmount(ctx context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, c := range r.contributions {
		total += c.Amount
	}
	return total, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Insert(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) List(ctx context.Context, limit int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.User
	for _, user := range r.users {
		out = append(out, *user)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type memAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (r *memAuditRepo) Insert(ctx context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *memAuditRepo) ListByRegistry(ctx context.Context, registryID string, limit int) ([]domain.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.AuditEvent
	for _, event := range r.events {
		if event.RegistryID == registryID {
			out = append(out, event)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memUploadSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.UploadSession
}

func newMemUploadSessionRepo() *memUploadSessionRepo {
	return &memUploadSessionRepo{sessions: make(map[string]*domain.UploadSession)}
}

func (r *memUploadSessionRepo) Insert(ctx context.Context, session *domain.UploadSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memUploadSessionRepo) Update(ctx context.Context, session *domain.UploadSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return domain.ErrUploadNotFound
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memUploadSessionRepo) GetByID(ctx context.Context, id string) (*domain.UploadSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrUploadNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *memUploadSessionRepo) AdvanceChunk(ctx context.Context, session *domain.UploadSession, fromIndex int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.ID]
	if !ok || stored.Status != domain.UploadStatusPending || stored.NextIndex != fromIndex {
		return domain.ErrChunkOutOfSequence
	}
	stored.NextIndex = session.NextIndex
	stored.ReceivedBytes = session.ReceivedBytes
	return nil
}

func (r *memUploadSessionRepo) ListExpired(ctx context.Context, now time.Time) ([]domain.UploadSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []domain.UploadSession
	for _, session := range r.sessions {
		if session.Status == domain.UploadStatusPending && session.ExpiresAt.Before(now) {
			expired = append(expired, *session)
		}
	}
	return expired, nil
}

func (r *memUploadSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// memBlobStore keeps chunk parts and assembled objects in maps.
type memBlobStore struct {
	mu      sync.Mutex
	parts   map[string]map[int64][]byte
	objects map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{
		parts:   make(map[string]map[int64][]byte),
		objects: make(map[string][]byte),
	}
}

func (s *memBlobStore) WriteChunk(uploadID string, index int64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.parts[uploadID] == nil {
		s.parts[uploadID] = make(map[int64][]byte)
	}
	s.parts[uploadID][index] = append([]byte(nil), data...)
	return nil
}

func (s *memBlobStore) Assemble(uploadID string, chunkCount int64, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var assembled []byte
	for index := int64(0); index < chunkCount; index++ {
		chunk, ok := s.parts[uploadID][index]
		if !ok {
			return 0, domain.ErrUploadIncomplete
		}
		assembled = append(assembled, chunk...)
	}

	s.objects[key] = assembled
	delete(s.parts, uploadID)
	return int64(len(assembled)), nil
}

func (s *memBlobStore) Open(key string) (io.ReadSeekCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return nopReadSeekCloser{bytes.NewReader(data)}, nil
}

func (s *memBlobStore) Discard(uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.parts, uploadID)
	return nil
}

type nopReadSeekCloser struct {
	*bytes.Reader
}

func (nopReadSeekCloser) Close() error { return nil }
