package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mauv0809/twse-codes/internal/config"
	"github.com/mauv0809/twse-codes/internal/db"
	"github.com/mauv0809/twse-codes/internal/download"
	"github.com/mauv0809/twse-codes/internal/handlers"
	"github.com/mauv0809/twse-codes/internal/logger"
	"github.com/mauv0809/twse-codes/internal/schema"
	"github.com/mauv0809/twse-codes/internal/scrape"
	"github.com/mauv0809/twse-codes/internal/store"
)

func main() {
	var (
		downloadFlag = flag.Bool("download", false, "force a refresh and print the resulting record set")
		getFlag      = flag.Bool("get", false, "query the tiered store and print the result")
		serveFlag    = flag.Bool("serve", false, "run the HTTP server instead of the one-shot CLI")
		categoryFlag = flag.String("category", "all", "category filter for --get")
		csvFlag      = flag.String("csv", "", "also write the --download result to this CSV file")
		symbolsFlag  = flag.Bool("symbols", false, "print symbols only instead of full records")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	ctx := context.Background()

	var repo *db.Repository
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, running without the persisted store")
	} else {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Warnw("could not run migrations", "error", err)
		} else {
			log.Info("migrations completed")
		}

		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warnw("could not connect to database, continuing without it", "error", err)
		} else {
			defer pool.Close()
			repo = db.NewRepository(pool, log)
			log.Info("connected to database")
		}
	}

	client := scrape.NewClient(cfg.BaseURL, cfg.HTTPTimeout, log)
	aggregator := scrape.NewAggregator(client, log)

	// The interface fields must stay nil when there is no repository; a
	// typed-nil pointer would look non-nil behind the interface.
	var writer download.Writer
	var reader store.Repository
	var status handlers.StatusReader
	if repo != nil {
		writer = repo
		reader = repo
		status = repo
	}

	orchestrator := download.New(aggregator, writer, log)
	codes := store.New(cfg.CacheDir, cfg.CSVPath, reader, orchestrator, log)

	if *serveFlag {
		serve(cfg, codes, orchestrator, status, log)
		return
	}

	if *downloadFlag {
		records, err := orchestrator.Refresh(ctx)
		if err != nil {
			if len(records) == 0 {
				fail(err)
			}
			log.Warnw("refresh fetched data but persisting failed", "error", err)
		}
		if *csvFlag != "" {
			if err := store.WriteCSVFile(*csvFlag, records); err != nil {
				fail(err)
			}
			log.Infow("wrote CSV export", "path", *csvFlag, "records", len(records))
		}
		printRecords(records, *symbolsFlag)
	}

	if *getFlag || !*downloadFlag {
		filter, err := schema.ParseFilter(*categoryFlag)
		if err != nil {
			fail(err)
		}
		records, err := codes.Query(ctx, filter)
		if err != nil {
			fail(err)
		}
		printRecords(records, *symbolsFlag)
	}
}

func serve(cfg *config.Config, codes *store.TieredStore, orchestrator *download.Orchestrator, status handlers.StatusReader, log *zap.SugaredLogger) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.Infow("request", "status", v.Status, "uri", v.URI)
			} else {
				log.Errorw("request", "status", v.Status, "uri", v.URI, "error", v.Error)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	h := handlers.New(codes, orchestrator, status, log)
	h.Register(e)

	log.Infow("starting server", "port", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}

func printRecords(records []schema.Record, symbolsOnly bool) {
	if symbolsOnly {
		for _, s := range schema.Symbols(records) {
			fmt.Println(s)
		}
		return
	}
	if err := store.WriteCSV(os.Stdout, records); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
