package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yegors/skyalert/internal/adsb"
	"github.com/yegors/skyalert/internal/api"
	"github.com/yegors/skyalert/internal/classify"
	"github.com/yegors/skyalert/internal/config"
	"github.com/yegors/skyalert/internal/geocode"
	"github.com/yegors/skyalert/internal/monitor"
	"github.com/yegors/skyalert/internal/notify"
	"github.com/yegors/skyalert/internal/websocket"
	"github.com/yegors/skyalert/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <postcode>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Watches the sky around a UK postcode and sends a push notification\nwhen a military or favourite aircraft enters the alert radius.\n\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	radius := flag.Float64("r", 0, "Alert radius in km (default 15)")
	flag.Float64Var(radius, "radius", 0, "Alert radius in km (default 15)")
	favourites := flag.String("f", "", "Path to favourites file, one identifier or callsign per line")
	flag.StringVar(favourites, "favourites", "", "Path to favourites file, one identifier or callsign per line")
	interval := flag.Int("interval", 0, "Seconds between polling cycles (default 120)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	// Secrets may live in a local .env file; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// CLI overrides
	cfg.Monitor.Postcode = flag.Arg(0)
	if *radius > 0 {
		cfg.Monitor.RadiusKm = *radius
	}
	if *favourites != "" {
		cfg.Monitor.FavouritesPath = *favourites
	}
	if *interval > 0 {
		cfg.Monitor.IntervalSecs = *interval
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting skyalert",
		logger.String("version", Version),
		logger.String("postcode", cfg.Monitor.Postcode),
		logger.Float64("radius_km", cfg.Monitor.RadiusKm),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resolve the monitored point. Without it nothing else can run.
	geocoder := geocode.NewClient(
		cfg.Geocode.BaseURL,
		time.Duration(cfg.Geocode.RequestTimeoutSecs)*time.Second,
		log,
	)
	center, err := geocoder.Lookup(ctx, cfg.Monitor.Postcode)
	if err != nil {
		log.Error("Failed to resolve postcode",
			logger.String("postcode", cfg.Monitor.Postcode),
			logger.Error(err))
		os.Exit(1)
	}
	log.Info("Postcode resolved",
		logger.String("postcode", cfg.Monitor.Postcode),
		logger.Float64("lat", center.Lat),
		logger.Float64("lon", center.Lon),
	)

	// Favourites are optional; a bad file means an empty set.
	var favs classify.Favourites
	if cfg.Monitor.FavouritesPath != "" {
		favs, err = classify.LoadFavourites(cfg.Monitor.FavouritesPath)
		if err != nil {
			log.Warn("Failed to load favourites, continuing without",
				logger.String("path", cfg.Monitor.FavouritesPath),
				logger.Error(err))
			favs = classify.Favourites{}
		} else {
			log.Info("Favourites loaded",
				logger.Int("count", len(favs)),
				logger.Any("tokens", favs.Tokens()))
		}
	}

	adsbClient := adsb.NewClient(
		cfg.ADSB.BaseURL,
		cfg.ADSB.TokenURL,
		cfg.ADSB.ClientID,
		cfg.ADSB.ClientSecret,
		adsb.BoundingBox{
			LatMin: cfg.Monitor.BBoxLatMin,
			LatMax: cfg.Monitor.BBoxLatMax,
			LonMin: cfg.Monitor.BBoxLonMin,
			LonMax: cfg.Monitor.BBoxLonMax,
		},
		time.Duration(cfg.ADSB.RequestTimeoutSecs)*time.Second,
		log,
	)

	var notifier monitor.Notifier
	if cfg.Notifications.Enabled && cfg.Notifications.Token != "" && cfg.Notifications.UserKey != "" {
		notifier = notify.NewPushoverNotifier(cfg.Notifications.Token, cfg.Notifications.UserKey, log)
	} else {
		log.Warn("Push notifications disabled (missing PUSHOVER_TOKEN or PUSHOVER_USER), alerts will only be logged")
		notifier = notify.NopNotifier{}
	}

	wsServer := websocket.NewServer(log)
	go wsServer.Run()

	monitorService := monitor.NewService(monitor.Config{
		Postcode:            cfg.Monitor.Postcode,
		Center:              center,
		RadiusKm:            cfg.Monitor.RadiusKm,
		Interval:            time.Duration(cfg.Monitor.IntervalSecs) * time.Second,
		TrackingURLTemplate: cfg.ADSB.TrackingURLTemplate,
		NotificationTitle:   cfg.Notifications.Title,
	}, adsbClient, notifier, wsServer, favs, log)

	if err := monitorService.Start(ctx); err != nil {
		log.Error("Failed to start monitor", logger.Error(err))
		os.Exit(1)
	}

	var server *http.Server
	if cfg.Server.Enabled {
		router := api.NewRouter(monitorService, log, wsServer)
		server = &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router.Routes(),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
		}

		go func() {
			log.Info("Starting HTTP server", logger.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("HTTP server error on startup", logger.String("addr", server.Addr), logger.Error(err))
			}
		}()
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down...")

	monitorService.Stop()
	cancel()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", logger.Error(err))
		}
	}

	log.Info("Shutdown complete")
}
