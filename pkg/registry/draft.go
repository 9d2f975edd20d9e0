// Package registry implements the local-first editing model for a cash
// registry: a durable draft of the registry and its funds, a reconciler that
// mirrors the draft to the remote API without ever blocking local edits, and
// a chunked upload pipeline for cover and hero images.
package registry

import (
	"github.com/rs/xid"
)

// Draft is the locally held, always-editable representation of a registry.
// ID stays empty until the first successful remote create.
type Draft struct {
	ID          string `json:"id,omitempty"`
	CoupleNames string `json:"couple_names"`
	EventDate   string `json:"event_date"`
	Location    string `json:"location"`
	Currency    string `json:"currency"`
	HeroImage   string `json:"hero_image"`
	Slug        string `json:"slug"`
	Theme       string `json:"theme"`

	Funds []Fund `json:"funds"`
}

// Fund is a draft gift goal. The id is generated client-side at creation and
// stays stable across remote syncs.
type Fund struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Goal        float64 `json:"goal"`
	CoverURL    string  `json:"cover_url"`
	Category    string  `json:"category"`
	Visible     bool    `json:"visible"`
	Order       int     `json:"order"`
	Pinned      bool    `json:"pinned"`
}

// DefaultCurrency matches the server-side default.
const DefaultCurrency = "AED"

// NewDraft returns an empty draft with defaults applied.
func NewDraft() *Draft {
	return &Draft{
		Currency: DefaultCurrency,
		Theme:    "modern",
	}
}

// NewFundID generates a client-side fund id. The remote bulk upsert accepts
// these ids as primary keys, so they survive sync unchanged.
func NewFundID() string {
	return "fund_" + xid.New().String()
}

// renumber restores the dense 0..N-1 order invariant after any operation
// that changes fund membership or position.
func (d *Draft) renumber() {
	for i := range d.Funds {
		d.Funds[i].Order = i
	}
}

func (d *Draft) fundIndex(id string) int {
	for i := range d.Funds {
		if d.Funds[i].ID == id {
			return i
		}
	}
	return -1
}

// FundByID returns a pointer into the draft's fund list, or nil.
func (d *Draft) FundByID(id string) *Fund {
	idx := d.fundIndex(id)
	if idx == -1 {
		return nil
	}
	return &d.Funds[idx]
}

// AddFund appends a new fund with defaults and returns it.
func (d *Draft) AddFund() *Fund {
	fund := Fund{
		ID:       NewFundID(),
		Title:    "New Gift",
		Goal:     1000,
		Category: "Experience",
		Visible:  true,
		Order:    len(d.Funds),
	}
	d.Funds = append(d.Funds, fund)
	return &d.Funds[len(d.Funds)-1]
}

// DuplicateFund copies a fund under a fresh id and appends it at the end of
// the list with the next order value.
func (d *Draft) DuplicateFund(id string) *Fund {
	idx := d.fundIndex(id)
	if idx == -1 {
		return nil
	}

	copied := d.Funds[idx]
	copied.ID = NewFundID()
	copied.Title = copied.Title + " (Copy)"
	copied.Order = len(d.Funds)
	d.Funds = append(d.Funds, copied)
	return &d.Funds[len(d.Funds)-1]
}

// RemoveFund deletes a fund and renumbers the remainder.
func (d *Draft) RemoveFund(id string) bool {
	idx := d.fundIndex(id)
	if idx == -1 {
		return false
	}

	d.Funds = append(d.Funds[:idx], d.Funds[idx+1:]...)
	d.renumber()
	return true
}

// MoveFund moves a fund by a signed delta. The target index is clamped to
// the list bounds; a clamped target equal to the source is a no-op.
func (d *Draft) MoveFund(id string, delta int) bool {
	idx := d.fundIndex(id)
	if idx == -1 {
		return false
	}

	to := idx + delta
	if to < 0 {
		to = 0
	}
	if to > len(d.Funds)-1 {
		to = len(d.Funds) - 1
	}
	if to == idx {
		return false
	}

	moved := d.Funds[idx]
	d.Funds = append(d.Funds[:idx], d.Funds[idx+1:]...)
	d.Funds = append(d.Funds[:to], append([]Fund{moved}, d.Funds[to:]...)...)
	d.renumber()
	return true
}

// ReorderFund moves fromID to the position of toID, shifting the items in
// between. This is the drag-over semantic: it can be applied repeatedly while
// a drag is in progress and converges to the same dense order.
func (d *Draft) ReorderFund(fromID, toID string) bool {
	from := d.fundIndex(fromID)
	to := d.fundIndex(toID)
	if from == -1 || to == -1 || from == to {
		return false
	}

	moved := d.Funds[from]
	d.Funds = append(d.Funds[:from], d.Funds[from+1:]...)
	d.Funds = append(d.Funds[:to], append([]Fund{moved}, d.Funds[to:]...)...)
	d.renumber()
	return true
}
