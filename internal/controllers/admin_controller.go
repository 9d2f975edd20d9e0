package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/kshadid/thegiftspace/internal/domain"
	"github.com/kshadid/thegiftspace/internal/middlewares"
)

const defaultAdminListLimit = 100

type AdminController struct {
	adminService domain.AdminService
}

type AdminControllerDependencies struct {
	AdminService domain.AdminService
}

func NewAdminController(deps AdminControllerDependencies) *AdminController {
	return &AdminController{
		adminService: deps.AdminService,
	}
}

func (c *AdminController) Stats(ctx fiber.Ctx) error {
	stats, err := c.adminService.Stats(ctx.Context())
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(stats)
}

func (c *AdminController) Metrics(ctx fiber.Ctx) error {
	metrics, err := c.adminService.Metrics(ctx.Context())
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(metrics)
}

func (c *AdminController) ListUsers(ctx fiber.Ctx) error {
	users, err := c.adminService.ListUsers(ctx.Context(), queryLimit(ctx))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(users)
}

func (c *AdminController) LookupUser(ctx fiber.Ctx) error {
	email := ctx.Query("email")
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email query parameter is required")
	}

	user, err := c.adminService.LookupUser(ctx.Context(), email)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(user)
}

func (c *AdminController) ListRegistries(ctx fiber.Ctx) error {
	registries, err := c.adminService.ListRegistries(ctx.Context(), queryLimit(ctx))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(registries)
}

func (c *AdminController) RegistryFunds(ctx fiber.Ctx) error {
	funds, err := c.adminService.RegistryFunds(ctx.Context(), ctx.Params("registryID"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(funds)
}

type setLockRequest struct {
	Locked bool   `json:"locked"`
	Reason string `json:"reason"`
}

// SetRegistryLock locks or unlocks a registry for moderation.
func (c *AdminController) SetRegistryLock(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	var req setLockRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	registry, err := c.adminService.SetRegistryLock(ctx.Context(), user.ID, domain.SetRegistryLockParams{
		RegistryID: ctx.Params("registryID"),
		Locked:     req.Locked,
		Reason:     req.Reason,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(registry)
}

func queryLimit(ctx fiber.Ctx) int {
	limit, err := strconv.Atoi(ctx.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultAdminListLimit
	}
	return limit
}
