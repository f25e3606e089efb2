package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/praxis-backend/internal/curriculum"
	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/platform/envutil"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
	"github.com/yungbote/praxis-backend/internal/platform/neo4jdb"
)

// Seeds the embedded curriculum into Neo4j. Safe to re-run: every write is a
// MERGE.
func main() {
	_ = godotenv.Load()

	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := neo4jdb.WaitFromEnv(ctx, log,
		envutil.Int("NEO4J_CONNECT_ATTEMPTS", 10),
		time.Duration(envutil.Int("NEO4J_CONNECT_DELAY_SECONDS", 3))*time.Second)
	if err != nil {
		log.Fatal("neo4j unreachable", "error", err)
	}
	defer client.Close(ctx)

	ds, err := curriculum.Load()
	if err != nil {
		log.Fatal("load curriculum dataset", "error", err)
	}

	store := graph.NewStore(client, log)
	if err := curriculum.NewSeeder(store, log).Seed(ctx, ds); err != nil {
		log.Fatal("seed curriculum", "error", err)
	}

	count, err := store.CountConcepts(ctx)
	if err != nil {
		log.Warn("verify concept count failed", "error", err)
		return
	}
	log.Info("curriculum seeded", "concepts", count)
}
