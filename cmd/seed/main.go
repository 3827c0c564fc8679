// Seeds default per-stage model settings so a fresh deployment resolves
// models from the database instead of environment fallbacks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"evalplanner-jobs/internal/config"
	pg "evalplanner-jobs/internal/infra/db/postgres"
	"evalplanner-jobs/internal/domain/ports/repository"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	settings := pg.NewSettingsRepo(pool)

	seed := map[string]string{
		"model_stage_a":           cfg.AI.DefaultModel,
		"model_stage_b":           cfg.AI.DefaultModel,
		"model_final_stage":       cfg.AI.DefaultModel,
		"temperature_stage_a":     "0.7",
		"temperature_stage_b":     "0.7",
		"temperature_final_stage": "0.3",
	}

	for key, value := range seed {
		// Keep operator edits: only write keys that are absent.
		if _, err := settings.Get(ctx, repository.NoTX, key); err == nil {
			fmt.Printf("  %s already set, skipping\n", key)
			continue
		}
		if err := settings.Set(ctx, repository.NoTX, key, value); err != nil {
			log.Fatalf("seed %s: %v", key, err)
		}
		fmt.Printf("  %s = %s\n", key, value)
	}
	fmt.Println("settings seeded")
}
