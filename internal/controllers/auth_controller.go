package controllers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kshadid/thegiftspace/internal/domain"
	"github.com/kshadid/thegiftspace/internal/middlewares"
)

type AuthController struct {
	authService domain.AuthService
}

type AuthControllerDependencies struct {
	AuthService domain.AuthService
}

func NewAuthController(deps AuthControllerDependencies) *AuthController {
	return &AuthController{
		authService: deps.AuthService,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates an account and returns a bearer token.
func (c *AuthController) Register(ctx fiber.Ctx) error {
	var req registerRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	token, err := c.authService.Register(ctx.Context(), domain.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if err == domain.ErrEmailTaken {
			return toHTTPError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return ctx.Status(fiber.StatusCreated).JSON(token)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *AuthController) Login(ctx fiber.Ctx) error {
	var req loginRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	token, err := c.authService.Login(ctx.Context(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(token)
}

// Me returns the authenticated user.
func (c *AuthController) Me(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}

	return ctx.JSON(user)
}
