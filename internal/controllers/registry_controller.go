package controllers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kshadid/thegiftspace/internal/domain"
	"github.com/kshadid/thegiftspace/internal/middlewares"
)

type RegistryController struct {
	registryService domain.RegistryService
	fundService     domain.FundService
}

type RegistryControllerDependencies struct {
	RegistryService domain.RegistryService
	FundService     domain.FundService
}

func NewRegistryController(deps RegistryControllerDependencies) *RegistryController {
	return &RegistryController{
		registryService: deps.RegistryService,
		fundService:     deps.FundService,
	}
}

type registryRequest struct {
	CoupleNames string `json:"couple_names"`
	EventDate   string `json:"event_date"`
	Location    string `json:"location"`
	Currency    string `json:"currency"`
	HeroImage   string `json:"hero_image"`
	Slug        string `json:"slug"`
	Theme       string `json:"theme"`
}

// Create creates a registry. The response carries the normalized slug,
// which may differ from the one submitted.
func (c *RegistryController) Create(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	var req registryRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	registry, err := c.registryService.CreateRegistry(ctx.Context(), domain.CreateRegistryParams{
		OwnerID:     user.ID,
		CoupleNames: req.CoupleNames,
		EventDate:   req.EventDate,
		Location:    req.Location,
		Currency:    req.Currency,
		HeroImage:   req.HeroImage,
		Slug:        req.Slug,
		Theme:       req.Theme,
	})
	if err != nil {
		if err == domain.ErrSlugTaken {
			return toHTTPError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return ctx.Status(fiber.StatusCreated).JSON(registry)
}

func (c *RegistryController) Update(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	var req registryRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	registry, err := c.registryService.UpdateRegistry(ctx.Context(), user.ID, ctx.Params("registryID"), domain.UpdateRegistryParams{
		CoupleNames: req.CoupleNames,
		EventDate:   req.EventDate,
		Location:    req.Location,
		Currency:    req.Currency,
		HeroImage:   req.HeroImage,
		Slug:        req.Slug,
		Theme:       req.Theme,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(registry)
}

func (c *RegistryController) Get(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	registry, err := c.registryService.GetRegistry(ctx.Context(), user.ID, ctx.Params("registryID"))
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(registry)
}

func (c *RegistryController) ListMine(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	registries, err := c.registryService.ListMyRegistries(ctx.Context(), user.ID)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(registries)
}

// GetPublic serves the guest view for a slug. No authentication.
func (c *RegistryController) GetPublic(ctx fiber.Ctx) error {
	view, err := c.registryService.GetPublicView(ctx.Context(), ctx.Params("slug"))
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(view)
}

type bulkUpsertFundsRequest struct {
	Funds []domain.Fund `json:"funds"`
}

// BulkUpsertFunds replaces-or-creates the submitted funds in one call.
func (c *RegistryController) BulkUpsertFunds(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	var req bulkUpsertFundsRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := c.fundService.BulkUpsertFunds(ctx.Context(), user.ID, ctx.Params("registryID"), req.Funds)
	if err != nil {
		switch err {
		case domain.ErrNotFound, domain.ErrForbidden, domain.ErrRegistryLocked:
			return toHTTPError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return ctx.JSON(result)
}

func (c *RegistryController) ListFunds(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	funds, err := c.fundService.ListFunds(ctx.Context(), user.ID, ctx.Params("registryID"))
	if err != nil {
		return toHTTPError(err)
	}

	if funds == nil {
		funds = []domain.Fund{}
	}

	return ctx.JSON(funds)
}

type addCollaboratorRequest struct {
	Email string `json:"email"`
}

func (c *RegistryController) AddCollaborator(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	var req addCollaboratorRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	registry, err := c.registryService.AddCollaborator(ctx.Context(), user.ID, ctx.Params("registryID"), req.Email)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(registry)
}

func (c *RegistryController) RemoveCollaborator(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	registry, err := c.registryService.RemoveCollaborator(ctx.Context(), user.ID, ctx.Params("registryID"), ctx.Params("collaboratorID"))
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(registry)
}

func (c *RegistryController) ListAuditEvents(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	events, err := c.registryService.ListAuditEvents(ctx.Context(), user.ID, ctx.Params("registryID"))
	if err != nil {
		return toHTTPError(err)
	}

	if events == nil {
		events = []domain.AuditEvent{}
	}

	return ctx.JSON(events)
}
