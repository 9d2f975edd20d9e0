package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kshadid/thegiftspace/internal/config"
	"github.com/kshadid/thegiftspace/internal/controllers"
	"github.com/kshadid/thegiftspace/internal/domain"
	"github.com/kshadid/thegiftspace/internal/server"
	"github.com/kshadid/thegiftspace/internal/services"
	"github.com/kshadid/thegiftspace/internal/storage/blob"
	mongostorage "github.com/kshadid/thegiftspace/internal/storage/mongo"
	"github.com/kshadid/thegiftspace/internal/version"
)

const uploadCleanupInterval = 15 * time.Minute

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  `Start the Giftspace API server with the configured MongoDB, Redis and upload storage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return runServe()
		},
	}

	return cmd
}

func runServe() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log.Info().
		Str("version", version.GetShortVersion()).
		Str("address", cfg.HTTPAddress).
		Msg("Starting giftspace API server")

	database, err := mongostorage.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	blobStore, err := blob.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	users := mongostorage.NewUserRepository(database)
	registries := mongostorage.NewRegistryRepository(database)
	funds := mongostorage.NewFundRepository(database)
	contributions := mongostorage.NewContributionRepository(database)
	uploads := mongostorage.NewUploadSessionRepository(database)
	audit := mongostorage.NewAuditRepository(database)

	authService := services.NewAuthService(services.AuthServiceDependencies{
		Users:       users,
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		AdminEmails: cfg.AdminEmails,
	})

	registryService := services.NewRegistryService(services.RegistryServiceDependencies{
		Registries:    registries,
		Funds:         funds,
		Contributions: contributions,
		Users:         users,
		Audit:         audit,
	})

	fundService := services.NewFundsService(services.FundsServiceDependencies{
		Registries: registries,
		Funds:      funds,
		Audit:      audit,
	})

	contributionService := services.NewContributionsService(services.ContributionsServiceDependencies{
		Registries:    registries,
		Funds:         funds,
		Contributions: contributions,
	})

	uploadService := services.NewUploadsService(services.UploadsServiceDependencies{
		Sessions:   uploads,
		Registries: registries,
		Blobs:      blobStore,
		ChunkSize:  cfg.UploadChunkSize,
		MaxSize:    cfg.UploadMaxSize,
	})

	adminService := services.NewAdminService(services.AdminServiceDependencies{
		Users:         users,
		Registries:    registries,
		Funds:         funds,
		Contributions: contributions,
		Audit:         audit,
	})

	go cleanupExpiredUploads(ctx, uploadService)

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		Config:      cfg,
		AuthService: authService,
		AuthController: controllers.NewAuthController(controllers.AuthControllerDependencies{
			AuthService: authService,
		}),
		RegistryController: controllers.NewRegistryController(controllers.RegistryControllerDependencies{
			RegistryService: registryService,
			FundService:     fundService,
		}),
		ContributionController: controllers.NewContributionController(controllers.ContributionControllerDependencies{
			ContributionService: contributionService,
		}),
		UploadController: controllers.NewUploadController(controllers.UploadControllerDependencies{
			UploadService: uploadService,
		}),
		AdminController: controllers.NewAdminController(controllers.AdminControllerDependencies{
			AdminService: adminService,
		}),
		RedisClient: redisClient,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Failed to shut down server gracefully")
		}
	}()

	if err := app.Listen(cfg.HTTPAddress); err != nil {
		return err
	}

	return nil
}

// cleanupExpiredUploads periodically reclaims abandoned upload sessions,
// chunk parts on disk included, so half-received uploads do not pile up.
func cleanupExpiredUploads(ctx context.Context, uploads domain.UploadService) {
	ticker := time.NewTicker(uploadCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleaned, err := uploads.CleanupExpired(ctx, time.Now())
			if err != nil {
				log.Warn().Err(err).Msg("Failed to clean up expired upload sessions")
				continue
			}
			if cleaned > 0 {
				log.Info().Int("count", cleaned).Msg("Cleaned up expired upload sessions")
			}
		}
	}
}
