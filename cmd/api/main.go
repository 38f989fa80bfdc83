package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/studiosite/studiosite-backend/api/middleware"
	"github.com/studiosite/studiosite-backend/api/routes"
	"github.com/studiosite/studiosite-backend/api/validators"
	"github.com/studiosite/studiosite-backend/internal/auth"
	"github.com/studiosite/studiosite-backend/internal/authz"
	"github.com/studiosite/studiosite-backend/internal/notifications"
	"github.com/studiosite/studiosite-backend/internal/pricing"
	product "github.com/studiosite/studiosite-backend/internal/products"
	"github.com/studiosite/studiosite-backend/internal/projects"
	"github.com/studiosite/studiosite-backend/internal/services"
	"github.com/studiosite/studiosite-backend/internal/showcase"
	"github.com/studiosite/studiosite-backend/internal/team"
	"github.com/studiosite/studiosite-backend/internal/users"
	"github.com/studiosite/studiosite-backend/pkg/auth/session"
	"github.com/studiosite/studiosite-backend/pkg/config"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/firebase"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"github.com/studiosite/studiosite-backend/pkg/metrics"
	"github.com/studiosite/studiosite-backend/pkg/pubsub"
	"github.com/studiosite/studiosite-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	secret, fallback, err := cfg.Session.ResolveSecret(cfg.App)
	if err != nil {
		return err
	}
	if fallback {
		logg.Warn(ctx, "STUDIOSITE_SESSION_SECRET is not set; using the development session secret. Never run like this in production.")
	}
	issuer, err := session.NewIssuer(secret, cfg.Session.Issuer)
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.Mongo, logg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = multierr.Append(err, dbClient.Close(closeCtx))
	}()
	if cfg.Mongo.AutoIndex {
		if err := dbClient.EnsureIndexes(ctx); err != nil {
			return err
		}
		logg.Info(ctx, "mongo indexes ensured")
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	fb, err := firebase.New(ctx, cfg.Firebase, logg)
	if err != nil {
		return err
	}

	mailer, closeMailer, err := newMailer(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeMailer())
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authMetrics := metrics.NewAuthMetrics(reg)

	sanitize := validators.SanitizeText

	userRepo := users.NewRepository(dbClient.Collection(db.CollectionUsers))
	userSvc, err := users.NewService(users.ServiceParams{Repo: userRepo, Identity: fb, Sanitizer: sanitize})
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(auth.ServiceParams{Provider: fb, Users: userSvc, Sessions: issuer, Logger: logg})
	if err != nil {
		return err
	}
	resetSvc, err := auth.NewPasswordResetService(auth.PasswordResetParams{
		Tokens:      auth.NewResetTokenRepository(dbClient.Collection(db.CollectionPasswordResetTokens)),
		Accounts:    fb,
		Users:       userSvc,
		Mailer:      mailer,
		Logger:      logg,
		FrontendURL: cfg.App.FrontendURL,
		TokenTTL:    cfg.PasswordReset.TokenTTL,
	})
	if err != nil {
		return err
	}
	productSvc, err := product.NewService(product.ServiceParams{
		Repo:      product.NewRepository(dbClient.Collection(db.CollectionProducts)),
		Sanitizer: sanitize,
	})
	if err != nil {
		return err
	}
	showcaseSvc, err := showcase.NewService(showcase.ServiceParams{
		Repo:      showcase.NewRepository(dbClient.Collection(db.CollectionShowcaseProducts)),
		Users:     userSvc,
		Sanitizer: sanitize,
	})
	if err != nil {
		return err
	}
	pricingSvc, err := pricing.NewService(pricing.ServiceParams{
		Store:     db.NewEmbeddedStore[models.PricingCategory](dbClient.Collection(db.CollectionPricingCategories), "plans"),
		Sanitizer: sanitize,
	})
	if err != nil {
		return err
	}
	projectSvc, err := projects.NewService(projects.ServiceParams{
		Store:     db.NewEmbeddedStore[models.ProjectCategory](dbClient.Collection(db.CollectionProjectCategories), "projects"),
		Sanitizer: sanitize,
	})
	if err != nil {
		return err
	}
	servicesSvc, err := services.NewService(services.ServiceParams{
		Repo:      services.NewRepository(dbClient.Collection(db.CollectionServices)),
		Sanitizer: sanitize,
	})
	if err != nil {
		return err
	}
	teamSvc, err := team.NewService(team.ServiceParams{
		Members:     team.NewMemberRepository(dbClient.Collection(db.CollectionTeamMembers)),
		Departments: team.NewDepartmentRepository(dbClient.Collection(db.CollectionDepartments)),
		Sanitizer:   sanitize,
	})
	if err != nil {
		return err
	}

	roles, err := authz.NewRoleStore(userRepo)
	if err != nil {
		return err
	}
	policy, err := authz.NewPolicy(cfg.Authz.AdminClaimPolicy)
	if err != nil {
		return err
	}
	guards := middleware.NewGuards(middleware.GuardParams{
		Roles:       roles,
		Policy:      policy,
		AdminSecret: cfg.Admin.Secret,
		Metrics:     authMetrics,
		Logger:      logg,
	})

	handler := routes.NewRouter(routes.Params{
		Config:      cfg,
		Logger:      logg,
		Mongo:       dbClient,
		Redis:       redisClient,
		RateLimits:  redisClient,
		Idempotency: redisClient,
		Identity: middleware.IdentityParams{
			Verifier: fb,
			Sessions: issuer,
			Metrics:  authMetrics,
			Logger:   logg,
		},
		Guards:        guards,
		HTTPMetrics:   metrics.NewHTTPMetrics(reg),
		Gatherer:      reg,
		Auth:          authSvc,
		PasswordReset: resetSvc,
		Users:         userSvc,
		Products:      productSvc,
		Showcase:      showcaseSvc,
		Pricing:       pricingSvc,
		Projects:      projectSvc,
		Services:      servicesSvc,
		Team:          teamSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"claim_policy": cfg.Authz.AdminClaimPolicy,
		"mail_pubsub":  cfg.PubSub.Enabled(),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newMailer publishes mail requests to Pub/Sub when a topic is configured and
// logs them otherwise. The returned func releases the publisher.
func newMailer(ctx context.Context, cfg *config.Config, logg *logger.Logger) (notifications.Mailer, func() error, error) {
	if !cfg.PubSub.Enabled() {
		logg.Warn(ctx, "STUDIOSITE_PUBSUB_MAIL_TOPIC is not set; mail requests will only be logged")
		return notifications.NewLogMailer(logg), func() error { return nil }, nil
	}

	gcp := cfg.GCP
	if strings.TrimSpace(gcp.ProjectID) == "" {
		gcp.ProjectID = cfg.Firebase.ProjectID
	}
	client, err := pubsub.NewClient(ctx, gcp, logg)
	if err != nil {
		return nil, nil, err
	}
	publisher := client.Publisher(cfg.PubSub.MailTopic)
	mailer, err := notifications.NewPubSubMailer(publisher, logg)
	if err != nil {
		return nil, nil, multierr.Append(err, client.Close())
	}
	return mailer, func() error {
		publisher.Stop()
		return client.Close()
	}, nil
}
