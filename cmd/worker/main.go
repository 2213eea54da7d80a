package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/cpquest/internal/app"
	"anoa.com/cpquest/internal/bootstrap"
	"anoa.com/cpquest/internal/config"
	"anoa.com/cpquest/internal/worker"
	"anoa.com/cpquest/pkg/database"
)

func main() {
	once := flag.Bool("once", false, "run every due job once and exit")
	job := flag.String("job", "", "run a single job by name (ignores interval guards) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg.DatabaseURL)
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	a, err := app.New(cfg, db, database.ConnectRedis(cfg.RedisURL))
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *job != "" {
		res, err := a.Runner.Run(ctx, *job, true)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		log.Printf("[%s] %s %s", res.Name, res.Status, res.Reason)
		return
	}

	trigger := worker.NewRunnerTrigger(a.Runner, cfg.TriggerCron)
	if *once {
		if err := trigger.Execute(ctx); err != nil {
			log.Fatalf("❌ %v", err)
		}
		return
	}

	scheduler := worker.NewScheduler(cfg.Timezone, 0)
	if err := scheduler.Register(trigger); err != nil {
		log.Fatalf("failed to schedule trigger: %v", err)
	}
	scheduler.Start()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
}
