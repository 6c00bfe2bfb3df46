package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yuma-shin/y-shin.net/albums"
	"github.com/yuma-shin/y-shin.net/analytics"
	"github.com/yuma-shin/y-shin.net/api"
	"github.com/yuma-shin/y-shin.net/cache"
	"github.com/yuma-shin/y-shin.net/config"
	"github.com/yuma-shin/y-shin.net/content"
	"github.com/yuma-shin/y-shin.net/diagrams"
	"github.com/yuma-shin/y-shin.net/events"
	"github.com/yuma-shin/y-shin.net/icons"
	"github.com/yuma-shin/y-shin.net/theme"
	"github.com/yuma-shin/y-shin.net/widgets"
)

var GlobalCacheManager *cache.Manager

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize global cache manager
	GlobalCacheManager = cache.NewManager()
	cache.GlobalInstance = GlobalCacheManager
	cache.StartCleanupRoutine(GlobalCacheManager)
	log.Println("Global cache manager initialized")

	// Theme state
	themeStore := theme.NewStore(config.ConfigDir)
	log.Printf("Theme loaded: mode=%s hue=%d", themeStore.Current().Mode, themeStore.Current().Hue)

	// Live-update broadcaster
	broadcaster := events.NewBroadcaster()
	go broadcaster.Run()

	// Content fragments
	loader := content.NewLoader(config.ContentDir, GlobalCacheManager)
	if _, err := loader.LoadAll(); err != nil {
		log.Fatalf("Initial content load failed: %v", err)
	}

	// Diagram render coordinator
	engine := diagrams.NewServiceEngine(config.DiagramServiceURL, config.DiagramServiceFallbackURL)
	coordinator := diagrams.NewCoordinator(engine, GlobalCacheManager, themeStore.Mode)
	coordinator.OnPassComplete = broadcaster.PublishRenderPass
	coordinator.Start()

	// Theme mutations drive re-renders and client notifications
	go func() {
		for state := range themeStore.Subscribe() {
			coordinator.OnThemeMutation(state.Mode)
			broadcaster.PublishThemeChange(state.Mode, state.Hue)
		}
	}()

	// Content directory watcher
	go func() {
		err := content.Watch(ctx, loader, func() {
			coordinator.OnContentReplaced()
			broadcaster.PublishContentReplaced()
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("ERROR: Content watcher stopped: %v", err)
		}
	}()

	// Process resume re-arms the theme detector; the theme file may have
	// changed while the process was stopped.
	resumeCh := make(chan os.Signal, 1)
	signal.Notify(resumeCh, syscall.SIGCONT)
	go func() {
		for range resumeCh {
			coordinator.OnResume()
		}
	}()

	// Analytics (optional)
	var analyticsService *analytics.Service
	if config.UmamiBaseURL != "" && config.UmamiWebsiteID != "" {
		store, err := analytics.NewStore(analytics.StoreConfig{
			TursoDatabase: config.TursoDatabase,
			TursoToken:    config.TursoToken,
			SQLitePath:    config.SQLitePath,
			AESKey:        config.EncryptionKey,
		})
		if err != nil {
			log.Printf("ERROR: Analytics store unavailable, snapshots disabled: %v", err)
		}

		client := analytics.NewUmamiClient(
			config.UmamiBaseURL, config.UmamiUsername, config.UmamiPassword, config.UmamiWebsiteID)
		analyticsService = analytics.NewService(client, GlobalCacheManager, store)

		if config.DigestRecipient != "" {
			mailer, err := analytics.NewDigestMailer(analyticsService, config.DigestRecipient)
			if err != nil {
				log.Printf("Analytics digest disabled: %v", err)
			} else {
				go mailer.Run(ctx, config.DigestInterval)
			}
		}
	} else {
		log.Println("Umami not configured, analytics endpoints disabled")
	}

	// Supporting services
	iconLoader := icons.NewLoader(GlobalCacheManager)
	albumScanner := albums.NewScanner(config.AlbumsDir, config.ThumbsDir)
	widgetManager, err := widgets.NewManager(config.ConfigDir)
	if err != nil {
		log.Fatalf("Widget configuration invalid: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.FilteredLogger())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	fragmentHandlers := api.NewFragmentHandlers(GlobalCacheManager)
	themeHandlers := api.NewThemeHandlers(themeStore)
	widgetHandlers := api.NewWidgetHandlers(widgetManager)
	albumHandlers := api.NewAlbumHandlers(albumScanner)
	iconHandlers := api.NewIconHandlers(iconLoader)
	analyticsHandlers := api.NewAnalyticsHandlers(analyticsService)
	wsHandler := api.NewWSHandler(broadcaster)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", api.HealthHandler)

		v1.GET("/theme", themeHandlers.Get)
		v1.PUT("/theme", api.AdminRequired(), themeHandlers.SetMode)
		v1.PUT("/theme/hue", api.AdminRequired(), themeHandlers.SetHue)

		v1.GET("/fragments", fragmentHandlers.List)
		v1.GET("/fragments/:id", fragmentHandlers.Get)

		v1.GET("/widgets/layout", widgetHandlers.Layout)

		v1.GET("/albums", albumHandlers.List)
		v1.GET("/albums/:name", albumHandlers.Get)

		v1.GET("/icons/:set", iconHandlers.GetSet)

		v1.GET("/analytics/stats", analyticsHandlers.Stats)
		v1.GET("/analytics/pageviews", analyticsHandlers.Pageviews)

		v1.POST("/auth/login", api.LoginHandler)

		v1.GET("/ws", wsHandler.Connect)
	}

	log.Printf("y-shin.net behavior service listening on :%s", config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
