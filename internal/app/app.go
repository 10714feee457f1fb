package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"vidstream/internal/config"
	"vidstream/internal/handler"
	"vidstream/internal/repository"
	"vidstream/internal/service"
	"vidstream/internal/token"
	"vidstream/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	codec := token.NewCodec(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	rateLimiter := service.NewRateLimiter(infra.Redis())
	viewRecorder := service.NewViewRecorder(infra.Redis(), cfg.Security.ViewDedupWindow.Duration)
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(repos.User, codec, infra.Media(), cfg.Security.BCryptCost)
	videoService := service.NewVideoService(repos.Video, repos.View, infra.Media(), viewRecorder)
	subscriptionService := service.NewSubscriptionService(repos.Subscription, repos.User)
	viewService := service.NewViewService(repos.View)

	authHandler := handler.NewAuthHandler(authService)
	videoHandler := handler.NewVideoHandler(videoService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	viewHandler := handler.NewViewHandler(viewService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("vidstream"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, routeDeps{
		auth:          authHandler,
		video:         videoHandler,
		subscription:  subscriptionHandler,
		view:          viewHandler,
		authService:   authService,
		videoService:  videoService,
		rateLimiter:   rateLimiter,
		healthChecker: healthChecker,
		metrics:       infra.MetricsHandler(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

type routeDeps struct {
	auth          *handler.AuthHandler
	video         *handler.VideoHandler
	subscription  *handler.SubscriptionHandler
	view          *handler.ViewHandler
	authService   service.AuthService
	videoService  service.VideoService
	rateLimiter   *service.RateLimiter
	healthChecker *HealthChecker
	metrics       http.Handler
}

func setupRoutes(router *gin.Engine, cfg *config.Config, deps routeDeps) {
	router.GET("/metrics", observability.PrometheusHandler(deps.metrics))
	router.GET("/health", deps.healthChecker.Handler)

	credentialLimit := handler.RateLimitMiddleware(deps.rateLimiter,
		cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.CredentialKey)
	requireAuth := handler.AuthMiddleware(deps.authService)
	requireOwnership := handler.RequireVideoOwnership(deps.videoService)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", credentialLimit, deps.auth.Register)
			auth.POST("/login", credentialLimit, deps.auth.Login)
			auth.POST("/refresh", deps.auth.Refresh)
			auth.POST("/logout", requireAuth, deps.auth.Logout)
			auth.GET("/me", requireAuth, deps.auth.GetMe)
		}

		account := api.Group("/account", requireAuth)
		{
			account.PATCH("/password", deps.auth.ChangePassword)
			account.PATCH("/email", deps.auth.ChangeEmail)
			account.PATCH("/fullname", deps.auth.ChangeFullname)
			account.PATCH("/avatar", deps.auth.ChangeAvatar)
			account.PATCH("/cover-image", deps.auth.ChangeCoverImage)
			account.DELETE("", deps.auth.DeleteAccount)
		}

		videos := api.Group("/videos", requireAuth)
		{
			videos.GET("", deps.video.List)
			videos.POST("", credentialLimit, deps.video.Publish)
			videos.GET("/:videoId", deps.video.Get)
			videos.PATCH("/:videoId/file", requireOwnership, deps.video.UpdateFile)
			videos.PATCH("/:videoId/thumbnail", requireOwnership, deps.video.UpdateThumbnail)
			videos.PATCH("/:videoId/title", requireOwnership, deps.video.UpdateTitle)
			videos.PATCH("/:videoId/description", requireOwnership, deps.video.UpdateDescription)
			videos.PATCH("/:videoId/toggle-publish", requireOwnership, deps.video.TogglePublish)
			videos.GET("/:videoId/viewers", requireOwnership, deps.view.VideoViewers)
			videos.DELETE("/:videoId", requireOwnership, deps.video.Delete)
		}

		subscriptions := api.Group("/subscriptions", requireAuth)
		{
			subscriptions.POST("/c/:channelId", deps.subscription.Toggle)
			subscriptions.GET("/c/:channelId/subscribers", deps.subscription.ListSubscribers)
			subscriptions.GET("/channels", deps.subscription.ListChannels)
		}

		api.GET("/channels/:username", requireAuth, deps.subscription.ChannelProfile)
		api.GET("/views/history", requireAuth, deps.view.WatchHistory)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
