package registry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kshadid/thegiftspace/pkg/clients/giftspace"
)

// Store keys. The draft is always reconstructable from these two entries;
// a draft that was never synced remotely is a valid terminal state.
const (
	storeKeyDraft      = "registry_draft"
	storeKeyRegistryID = "registry_id"
)

// API is the slice of the giftspace client the reconciler needs. Satisfied
// by *giftspace.Client.
type API interface {
	CreateRegistry(ctx context.Context, req *giftspace.CreateRegistryRequest) (*giftspace.Registry, error)
	UpdateRegistry(ctx context.Context, registryID string, req *giftspace.UpdateRegistryRequest) (*giftspace.Registry, error)
	BulkUpsertFunds(ctx context.Context, registryID string, funds []giftspace.Fund) (*giftspace.BulkUpsertFundsResponse, error)
	AddCollaborator(ctx context.Context, registryID, email string) (*giftspace.Registry, error)
	RemoveCollaborator(ctx context.Context, registryID, userID string) (*giftspace.Registry, error)
}

// Outcome reports how a SaveAll landed. It never reports failure: a draft
// that could not reach the remote side is still saved locally.
type Outcome int

const (
	SavedLocally Outcome = iota
	SavedToCloud
)

func (o Outcome) String() string {
	if o == SavedToCloud {
		return "saved to cloud"
	}
	return "saved locally"
}

// Reconciler keeps a Draft durable in a local Store and best-effort mirrors
// it to the remote API. Remote failures never propagate past SyncRemote's
// boolean; editing continues against local state.
type Reconciler struct {
	api   API
	store Store

	bg sync.WaitGroup
}

type ReconcilerDependencies struct {
	API   API
	Store Store
}

func NewReconciler(deps ReconcilerDependencies) *Reconciler {
	return &Reconciler{
		api:   deps.API,
		store: deps.Store,
	}
}

// LoadDraft reconstructs the draft from the local store, or returns a fresh
// one when nothing is persisted yet.
func (r *Reconciler) LoadDraft() *Draft {
	draft := NewDraft()

	if data, ok := r.store.Get(storeKeyDraft); ok {
		if err := json.Unmarshal(data, draft); err != nil {
			log.Warn().Err(err).Msg("discarding unreadable local draft")
			draft = NewDraft()
		}
	}

	if id, ok := r.store.Get(storeKeyRegistryID); ok {
		draft.ID = string(id)
	}

	return draft
}

// SaveLocal writes the draft to the local store. It has no failure path.
func (r *Reconciler) SaveLocal(draft *Draft) {
	data, err := json.Marshal(draft)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode draft for local save")
		return
	}

	r.store.Set(storeKeyDraft, data)
	if draft.ID != "" {
		r.store.Set(storeKeyRegistryID, []byte(draft.ID))
	}
}

// SyncRemote pushes the full draft to the remote system of record. The first
// successful push creates the registry and adopts the remote-assigned id and
// normalized slug; later pushes update it. The entire current fund list is
// then sent as one bulk upsert. Every failure is converted to false here;
// nothing escapes this boundary.
func (r *Reconciler) SyncRemote(ctx context.Context, draft *Draft) bool {
	if err := r.sync(ctx, draft); err != nil {
		kind := classifySyncFailure(err)
		log.Warn().
			Err(err).
			Str("failure", string(kind)).
			Str("registry_id", draft.ID).
			Msg("sync failed, staying local")
		return false
	}
	return true
}

// sync is the fallible core of SyncRemote. It is the only place remote
// errors exist before the boolean adapter swallows them.
func (r *Reconciler) sync(ctx context.Context, draft *Draft) error {
	if draft.ID == "" {
		// The store is the authority on whether the registry exists
		// remotely. A detached background sync may have created it after
		// this draft was loaded; creating again would collide on the slug.
		if id, ok := r.store.Get(storeKeyRegistryID); ok {
			draft.ID = string(id)
		}
	}

	currency := draft.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	theme := draft.Theme
	if theme == "" {
		theme = "modern"
	}

	if draft.ID == "" {
		created, err := r.api.CreateRegistry(ctx, &giftspace.CreateRegistryRequest{
			CoupleNames: draft.CoupleNames,
			EventDate:   draft.EventDate,
			Location:    draft.Location,
			Currency:    currency,
			HeroImage:   draft.HeroImage,
			Slug:        draft.Slug,
			Theme:       theme,
		})
		if err != nil {
			return err
		}

		draft.ID = created.ID
		// The remote side normalizes the slug; the local value must follow
		// or later updates would diverge from the public URL.
		draft.Slug = created.Slug
		r.SaveLocal(draft)
	} else {
		if _, err := r.api.UpdateRegistry(ctx, draft.ID, &giftspace.UpdateRegistryRequest{
			CoupleNames: draft.CoupleNames,
			EventDate:   draft.EventDate,
			Location:    draft.Location,
			Currency:    currency,
			HeroImage:   draft.HeroImage,
			Slug:        draft.Slug,
			Theme:       theme,
		}); err != nil {
			return err
		}
	}

	payload := make([]giftspace.Fund, len(draft.Funds))
	for i, f := range draft.Funds {
		payload[i] = giftspace.Fund{
			ID:          f.ID,
			Title:       f.Title,
			Description: f.Description,
			Goal:        f.Goal,
			CoverURL:    f.CoverURL,
			Category:    f.Category,
			Visible:     f.Visible,
			Order:       f.Order,
			Pinned:      f.Pinned,
		}
	}

	if _, err := r.api.BulkUpsertFunds(ctx, draft.ID, payload); err != nil {
		return err
	}

	return nil
}

// SaveAll persists locally, then best-effort syncs. From the caller's point
// of view it always succeeds; the outcome only decides the notice shown.
func (r *Reconciler) SaveAll(ctx context.Context, draft *Draft) Outcome {
	r.SaveLocal(draft)
	if r.SyncRemote(ctx, draft) {
		return SavedToCloud
	}
	return SavedLocally
}

// silentSync persists the draft and fires a detached background sync whose
// result is discarded. Used only by the quick-action mutators; SaveAll stays
// fully synchronous so its outcome is deterministic.
func (r *Reconciler) silentSync(ctx context.Context, draft *Draft) {
	r.SaveLocal(draft)

	snapshot := *draft
	snapshot.Funds = make([]Fund, len(draft.Funds))
	copy(snapshot.Funds, draft.Funds)

	r.bg.Add(1)
	go func() {
		defer r.bg.Done()
		if !r.SyncRemote(ctx, &snapshot) {
			log.Debug().Msg("background sync failed, local draft unaffected")
		}
	}()
}

// Flush waits for in-flight background syncs. Call on shutdown or in tests.
func (r *Reconciler) Flush() {
	r.bg.Wait()
}

// TogglePinned flips a fund's pinned flag and fires a silent background sync.
func (r *Reconciler) TogglePinned(ctx context.Context, draft *Draft, fundID string) bool {
	fund := draft.FundByID(fundID)
	if fund == nil {
		return false
	}
	fund.Pinned = !fund.Pinned
	r.silentSync(ctx, draft)
	return true
}

// ToggleVisible flips a fund's visibility and fires a silent background sync.
func (r *Reconciler) ToggleVisible(ctx context.Context, draft *Draft, fundID string) bool {
	fund := draft.FundByID(fundID)
	if fund == nil {
		return false
	}
	fund.Visible = !fund.Visible
	r.silentSync(ctx, draft)
	return true
}

// CommitGoal sets a fund's goal amount and fires a silent background sync.
func (r *Reconciler) CommitGoal(ctx context.Context, draft *Draft, fundID string, goal float64) bool {
	fund := draft.FundByID(fundID)
	if fund == nil {
		return false
	}
	fund.Goal = goal
	r.silentSync(ctx, draft)
	return true
}

// MoveFund shifts a fund by a signed delta and fires a silent background
// sync. A move that clamps back onto the source position changes nothing and
// syncs nothing.
func (r *Reconciler) MoveFund(ctx context.Context, draft *Draft, fundID string, delta int) bool {
	if !draft.MoveFund(fundID, delta) {
		return false
	}
	r.silentSync(ctx, draft)
	return true
}

// ReorderFund applies a drag-over reorder and fires a silent background sync.
func (r *Reconciler) ReorderFund(ctx context.Context, draft *Draft, fromID, toID string) bool {
	if !draft.ReorderFund(fromID, toID) {
		return false
	}
	r.silentSync(ctx, draft)
	return true
}

// AddCollaborator grants co-edit rights by email. Collaborators are managed
// by dedicated remote calls, not the bulk sync, and errors surface to the
// caller: the registry must already exist remotely.
func (r *Reconciler) AddCollaborator(ctx context.Context, draft *Draft, email string) error {
	if draft.ID == "" {
		return &giftspace.Error{StatusCode: 409, Message: "registry not synced yet"}
	}
	_, err := r.api.AddCollaborator(ctx, draft.ID, email)
	return err
}

// RemoveCollaborator revokes co-edit rights.
func (r *Reconciler) RemoveCollaborator(ctx context.Context, draft *Draft, userID string) error {
	if draft.ID == "" {
		return &giftspace.Error{StatusCode: 409, Message: "registry not synced yet"}
	}
	_, err := r.api.RemoveCollaborator(ctx, draft.ID, userID)
	return err
}
