package controllers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kshadid/thegiftspace/internal/domain"
	"github.com/kshadid/thegiftspace/internal/middlewares"
)

type ContributionController struct {
	contributionService domain.ContributionService
}

type ContributionControllerDependencies struct {
	ContributionService domain.ContributionService
}

func NewContributionController(deps ContributionControllerDependencies) *ContributionController {
	return &ContributionController{
		contributionService: deps.ContributionService,
	}
}

type createContributionRequest struct {
	FundID  string  `json:"fund_id"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
	Public  bool    `json:"public"`
	Method  string  `json:"method"`
}

// Create records a guest contribution. Guests are unauthenticated.
func (c *ContributionController) Create(ctx fiber.Ctx) error {
	var req createContributionRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	contribution, err := c.contributionService.CreateContribution(ctx.Context(), domain.CreateContributionParams{
		FundID:  req.FundID,
		Name:    req.Name,
		Amount:  req.Amount,
		Message: req.Message,
		Public:  req.Public,
		Method:  req.Method,
	})
	if err != nil {
		if err == domain.ErrNotFound {
			return toHTTPError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return ctx.Status(fiber.StatusCreated).JSON(contribution)
}

func (c *ContributionController) ListByFund(ctx fiber.Ctx) error {
	contributions, err := c.contributionService.ListContributions(ctx.Context(), ctx.Params("fundID"))
	if err != nil {
		return toHTTPError(err)
	}

	if contributions == nil {
		contributions = []domain.Contribution{}
	}

	return ctx.JSON(contributions)
}

func (c *ContributionController) Analytics(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	analytics, err := c.contributionService.GetAnalytics(ctx.Context(), user.ID, ctx.Params("registryID"))
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(analytics)
}

// ExportCSV streams the registry's contributions as a CSV download.
func (c *ContributionController) ExportCSV(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	data, err := c.contributionService.ExportCSV(ctx.Context(), user.ID, ctx.Params("registryID"))
	if err != nil {
		return toHTTPError(err)
	}

	ctx.Set(fiber.HeaderContentType, "text/csv")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="contributions.csv"`)

	return ctx.Send(data)
}
