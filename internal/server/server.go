package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/redis/go-redis/v9"

	"github.com/kshadid/thegiftspace/internal/config"
	"github.com/kshadid/thegiftspace/internal/controllers"
	"github.com/kshadid/thegiftspace/internal/domain"
	"github.com/kshadid/thegiftspace/internal/middlewares"
	"github.com/kshadid/thegiftspace/internal/version"
)

type HTTPServerDependencies struct {
	Config                 *config.Config
	AuthService            domain.AuthService
	AuthController         *controllers.AuthController
	RegistryController     *controllers.RegistryController
	ContributionController *controllers.ContributionController
	UploadController       *controllers.UploadController
	AdminController        *controllers.AdminController
	RedisClient            *redis.Client
}

func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName:      "giftspace-api",
		BodyLimit:    int(deps.Config.UploadChunkSize) + 1<<20,
		ErrorHandler: errorHandler,
	})

	router.Use(cors.New())
	router.Use(logger.New())

	// Health check endpoint (no authentication required)
	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "giftspace-api",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")

	requireAuth := middlewares.AuthMiddleware(deps.AuthService)

	// Auth endpoints are rate limited per client IP to slow brute force.
	auth := api.Group("/auth")
	auth.Use(middlewares.RateLimitMiddleware(deps.RedisClient, deps.Config.AuthRateLimit))
	auth.Post("/register", deps.AuthController.Register)
	auth.Post("/login", deps.AuthController.Login)
	auth.Get("/me", deps.AuthController.Me, requireAuth)

	registries := api.Group("/registries")
	registries.Post("/", deps.RegistryController.Create, requireAuth)
	registries.Get("/", deps.RegistryController.ListMine, requireAuth)
	registries.Get("/:slug/public", deps.RegistryController.GetPublic)
	registries.Get("/:registryID", deps.RegistryController.Get, requireAuth)
	registries.Put("/:registryID", deps.RegistryController.Update, requireAuth)
	registries.Post("/:registryID/funds/bulk_upsert", deps.RegistryController.BulkUpsertFunds, requireAuth)
	registries.Get("/:registryID/funds", deps.RegistryController.ListFunds, requireAuth)
	registries.Post("/:registryID/collaborators", deps.RegistryController.AddCollaborator, requireAuth)
	registries.Delete("/:registryID/collaborators/:collaboratorID", deps.RegistryController.RemoveCollaborator, requireAuth)
	registries.Get("/:registryID/audit", deps.RegistryController.ListAuditEvents, requireAuth)
	registries.Get("/:registryID/analytics", deps.ContributionController.Analytics, requireAuth)
	registries.Get("/:registryID/contributions/export", deps.ContributionController.ExportCSV, requireAuth)

	api.Post("/contributions", deps.ContributionController.Create)
	api.Get("/funds/:fundID/contributions", deps.ContributionController.ListByFund, requireAuth)

	uploads := api.Group("/uploads", requireAuth)
	uploads.Post("/initiate", deps.UploadController.Initiate)
	uploads.Post("/chunk", deps.UploadController.Chunk)
	uploads.Post("/complete", deps.UploadController.Complete)

	api.Get("/files/*", deps.UploadController.ServeFile)

	admin := api.Group("/admin", requireAuth, middlewares.AdminMiddleware())
	admin.Get("/me", deps.AuthController.Me)
	admin.Get("/stats", deps.AdminController.Stats)
	admin.Get("/metrics", deps.AdminController.Metrics)
	admin.Get("/users", deps.AdminController.ListUsers)
	admin.Get("/users/lookup", deps.AdminController.LookupUser)
	admin.Get("/registries", deps.AdminController.ListRegistries)
	admin.Get("/registries/:registryID/funds", deps.AdminController.RegistryFunds)
	admin.Post("/registries/:registryID/lock", deps.AdminController.SetRegistryLock)

	return router
}

// errorHandler renders every fiber error as a JSON body so API clients can
// always parse the "error" field.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
