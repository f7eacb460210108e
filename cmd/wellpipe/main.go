package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/basinworks/wellpipe/internal/harvest"
	"github.com/basinworks/wellpipe/internal/notify"
	"github.com/basinworks/wellpipe/internal/pipeline"
	"github.com/basinworks/wellpipe/internal/scheduler"
	"github.com/basinworks/wellpipe/internal/server"
	"github.com/basinworks/wellpipe/internal/service"
	"github.com/basinworks/wellpipe/internal/store"
)

func main() {
	headerPath := flag.String("header", "data/well_header.txt", "Pipe-delimited well header file (or .zip)")
	productionPath := flag.String("production", "data/production.zip", "Pipe-delimited monthly production file (or .zip)")
	catalogURL := flag.String("catalog-url", "", "Override the well catalog base URL")
	harvestTimeout := flag.Duration("harvest-timeout", 30*time.Second, "Per-request timeout for catalog fetches")
	harvestDeadline := flag.Duration("harvest-deadline", 5*time.Minute, "Overall deadline for one harvest")
	skipHarvest := flag.Bool("skip-harvest", false, "Skip the web harvest path")
	serve := flag.Bool("serve", false, "Serve the computed tables over HTTP")
	port := flag.Int("port", 8090, "HTTP port when serving")
	cronSpec := flag.String("cron", "", "Cron expression for periodic refresh when serving")
	redisAddr := flag.String("redis", "", "Redis address for refresh notifications (empty disables)")
	outputJSON := flag.Bool("json", false, "Print the computed tables as JSON")
	exportPath := flag.String("export", "", "Write the analytic table as CSV to this path")
	flag.Parse()

	harvestConfig := harvest.DefaultConfig()
	if *catalogURL != "" {
		harvestConfig.BaseURL = *catalogURL
	}
	harvestConfig.RequestTimeout = *harvestTimeout
	harvestConfig.HarvestDeadline = *harvestDeadline
	harvester := harvest.NewHarvester(harvestConfig)

	var sink service.RunSink
	if store.Enabled() {
		database, err := store.NewDatabase(store.DefaultConfig())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
		if err := database.SetupSchema(context.Background()); err != nil {
			log.Fatalf("Failed to set up database schema: %v", err)
		}
		sink = database
	}

	var notifier service.RefreshNotifier
	if *redisAddr != "" || os.Getenv("WELLPIPE_REDIS_ADDR") != "" {
		redisNotifier := notify.NewRedisNotifier(*redisAddr)
		defer redisNotifier.Close()
		notifier = redisNotifier
	}

	svc := service.New(service.Config{
		HeaderPath:     *headerPath,
		ProductionPath: *productionPath,
	}, harvester, sink, notifier)

	ctx := context.Background()

	if !*skipHarvest {
		wells, err := svc.HarvestWells(ctx)
		if err != nil {
			log.Fatalf("Harvest failed: %v", err)
		}
		fmt.Printf("Harvested %d wells\n", len(wells))
	}

	merged, err := svc.RefreshAnalytics(ctx)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	fmt.Printf("Analytic table: %d rows\n", len(merged))

	if *outputJSON {
		out, _ := json.MarshalIndent(map[string]interface{}{
			"wells":     svc.Wells(),
			"summary":   svc.Summary(),
			"analytics": merged,
		}, "", "  ")
		fmt.Println(string(out))
	}

	if *exportPath != "" {
		f, err := os.Create(*exportPath)
		if err != nil {
			log.Fatalf("Failed to create export file: %v", err)
		}
		if err := pipeline.WriteAnalyticsCSV(f, merged, ','); err != nil {
			f.Close()
			log.Fatalf("Export failed: %v", err)
		}
		f.Close()
		fmt.Printf("Wrote analytic table to %s\n", *exportPath)
	}

	if !*serve {
		return
	}

	if *cronSpec != "" {
		sched := scheduler.NewScheduler(svc)
		if err := sched.Start(*cronSpec); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	serveCtx, cancel := context.WithCancel(ctx)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Printf("Shutting down...")
		cancel()
	}()

	api := server.NewAPI(server.Config{Port: *port}, svc)
	if err := api.Start(serveCtx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
