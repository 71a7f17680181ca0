package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"docchat/internal/activities"
	"docchat/internal/api"
	"docchat/internal/config"
	"docchat/internal/pinecone"
	"docchat/internal/providers"
	"docchat/internal/rag"
	"docchat/internal/storage"
	"docchat/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	embedder, err := providers.BuildEmbedding(cfg)
	if err != nil {
		log.Fatal(err)
	}
	llm, err := providers.BuildLLM(cfg)
	if err != nil {
		log.Fatal(err)
	}
	index := pinecone.NewClient(cfg.PineconeAPIKey, cfg.PineconeIndexHost)

	pipeline := rag.NewOrchestrator(
		rag.NewRewriter(llm),
		rag.NewRetriever(embedder, index, cfg.TopK),
		rag.NewGenerator(llm),
	)

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	// With the memory registry only an in-process worker can see the same
	// records the API writes, so EmbeddedWorker is the default deployment.
	if cfg.EmbeddedWorker {
		w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.MaxConcurrentIngests,
		})
		workflows.Register(w)
		activities.Register(w, activities.New(cfg, store, embedder, index))
		if err := w.Start(); err != nil {
			log.Fatal(err)
		}
		defer w.Stop()
	} else if cfg.RegistryDriver == "memory" {
		log.Fatal("DOCCHAT_REGISTRY_DRIVER=memory requires DOCCHAT_EMBEDDED_WORKER=true")
	}

	srv := api.NewServer(cfg, store, c, pipeline)
	log.Printf("docchat api listening on %s registry=%q embed_provider=%q llm_provider=%q embedded_worker=%t",
		cfg.APIAddr, cfg.RegistryDriver, cfg.EmbedProvider, cfg.LLMProvider, cfg.EmbeddedWorker)
	if err := http.ListenAndServe(cfg.APIAddr, srv.Routes()); err != nil {
		log.Fatal(err)
	}
}

func buildStore(cfg config.Config) (storage.DocumentStore, func(), error) {
	switch cfg.RegistryDriver {
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pg, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown registry driver %q", cfg.RegistryDriver)
	}
}
