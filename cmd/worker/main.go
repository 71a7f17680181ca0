package main

import (
	"context"
	"log"
	"time"

	"docchat/internal/activities"
	"docchat/internal/config"
	"docchat/internal/pinecone"
	"docchat/internal/providers"
	"docchat/internal/storage"
	"docchat/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// Standalone ingest worker for split deployments. It needs a registry both
// processes can reach, so the memory driver is rejected up front.
func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	if cfg.RegistryDriver != "postgres" {
		log.Fatalf("standalone worker requires DOCCHAT_REGISTRY_DRIVER=postgres, got %q", cfg.RegistryDriver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	embedder, err := providers.BuildEmbedding(cfg)
	if err != nil {
		log.Fatal(err)
	}
	index := pinecone.NewClient(cfg.PineconeAPIKey, cfg.PineconeIndexHost)

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.MaxConcurrentIngests,
	})
	workflows.Register(w)
	activities.Register(w, activities.New(cfg, store, embedder, index))

	log.Printf("docchat worker connected to %s queue=%s embed_provider=%q max_concurrent_ingests=%d",
		cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.EmbedProvider, cfg.MaxConcurrentIngests)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
