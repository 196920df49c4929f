package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"forumvote/internal/config"
	"forumvote/internal/db"
	"forumvote/internal/logger"
	"forumvote/internal/middleware"
	"forumvote/internal/models"
	"forumvote/internal/router"
	"forumvote/internal/services"
	"forumvote/internal/utils"
	"forumvote/internal/votes"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, cfg.Log.Level)

	// Initialize Database
	conn, err := db.Open(cfg.DB.URL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	store := db.NewStore(conn)

	// 投票副作用队列
	queue := services.NewTaskQueue(cfg.Queue.Size, cfg.Queue.Workers, log)

	cache, err := utils.NewCache(cfg.Cache.Size, cfg.Cache.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("create post cache")
	}

	tiers, err := votes.ParseTiers(cfg.Voting.BigVoteTiers)
	if err != nil {
		log.Fatal().Err(err).Msg("parse big vote tiers")
	}
	weights := votes.Weights{Small: cfg.Voting.SmallVotePower, Big: tiers}

	karma := services.NewKarmaCallbacks(conn)
	svc := votes.New(store, votes.Options{
		Weights:         weights,
		Gravity:         cfg.Voting.Gravity,
		WarningCooldown: cfg.Voting.WarningCooldown,
		HistoryWindow:   cfg.Voting.HistoryWindow,
		Systems: votes.NewRegistry(nil).
			Register(models.CollectionComments, votes.TwoAxisVotingSystem{Weights: weights}),
		Dispatcher: queue,
		Indexer:    services.NewSearchIndexer(conn, store),
		Cache:      cache,
		Callbacks:  []votes.Callbacks{karma},
		Metrics:    votes.NewMetrics(prometheus.DefaultRegisterer),
		Logger:     log,
	})

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	r.Use(sessions.Sessions("forumvote_session", cookie.NewStore([]byte(cfg.Session.Secret))))

	// Middleware
	r.Use(middleware.LoadUser(store, log))

	router.RegisterRoutes(r, router.Deps{
		Votes:    svc,
		Store:    store,
		Karma:    karma,
		Cache:    cache,
		Gatherer: prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("forumvote server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// 等待已入队的副作用执行完
	queue.Close()
}
