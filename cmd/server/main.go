package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/saunderscox/taskolotl/internal/storage"
	"github.com/saunderscox/taskolotl/modules/identity"
	"github.com/saunderscox/taskolotl/pkg/auth"
	"github.com/saunderscox/taskolotl/pkg/config"
	"github.com/saunderscox/taskolotl/pkg/httpserver"
	"github.com/saunderscox/taskolotl/pkg/jwt"
	"github.com/saunderscox/taskolotl/pkg/logger"
	"github.com/saunderscox/taskolotl/pkg/pg"
	"github.com/saunderscox/taskolotl/pkg/redis"
)

func main() {
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.New(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		tokenCfg  auth.TokenConfig
		googleCfg auth.GoogleOAuthConfig
		pgCfg     pg.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
	)
	config.MustLoad(&tokenCfg)
	config.MustLoad(&googleCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)

	// The signing key is derived once here; a missing or weak secret is a
	// fatal configuration error, never a per-request one.
	codec, err := jwt.New(tokenCfg.Secret, tokenCfg.Issuer)
	if err != nil {
		log.Error("invalid token signing configuration", logger.Error(err))
		os.Exit(1)
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		log.Error("failed to apply migrations", logger.Error(err))
		os.Exit(1)
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		log.Error("failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	users := storage.NewUserStore(pool)
	states := storage.NewStateStore(redisClient)

	resolver := auth.NewResolver(users, auth.WithResolverLogger(log))
	issuer := auth.NewIssuer(codec, tokenCfg)
	refresher := auth.NewRefresher(codec, issuer, users)
	oauth := auth.NewOAuthService(
		auth.NewGoogleAdapter(googleCfg),
		states,
		resolver,
		auth.WithStateTTL(googleCfg.StateTTL),
		auth.WithVerifiedOnly(googleCfg.VerifiedOnly),
		auth.WithOAuthLogger(log),
	)
	handler := auth.NewHandler(oauth, issuer, refresher, users, auth.WithHandlerLogger(log))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	// Verifier sits near the front of the chain so every downstream handler
	// can read the verified identity; it never rejects by itself.
	r.Use(jwt.Verifier(codec))

	r.Get("/health", httpserver.HealthCheckHandler(log, pg.Healthcheck(pool), redis.Healthcheck(redisClient)))
	r.Mount("/", identity.Router(handler))

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.Error("http server failed", logger.Error(err))
		os.Exit(1)
	}
}
