package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/flarexio/docqa"
	"github.com/flarexio/docqa/embedding"
	"github.com/flarexio/docqa/generation"
	"github.com/flarexio/docqa/persistence/chromem"

	mcpE "github.com/flarexio/docqa/mcp"
	httpT "github.com/flarexio/docqa/transport/http"
	natsT "github.com/flarexio/docqa/transport/nats"
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "docqa",
		Usage: "Answer questions about a single PDF document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the YAML config file",
				Value:   "config.yaml",
				Sources: cli.EnvVars("DOCQA_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "document",
				Usage:   "Path to the PDF document to index",
				Sources: cli.EnvVars("DOCQA_DOCUMENT"),
			},
			&cli.StringFlag{
				Name:    "http-addr",
				Usage:   "HTTP server address",
				Sources: cli.EnvVars("DOCQA_HTTP_ADDR"),
			},
			&cli.StringFlag{
				Name:    "embedding-provider",
				Usage:   "Embedding provider (ollama, openai, hash)",
				Sources: cli.EnvVars("DOCQA_EMBEDDING_PROVIDER"),
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Sources: cli.EnvVars("DOCQA_EMBEDDING_MODEL"),
			},
			&cli.StringFlag{
				Name:    "generation-provider",
				Usage:   "Generation provider (ollama, openai)",
				Sources: cli.EnvVars("DOCQA_GENERATION_PROVIDER"),
			},
			&cli.StringFlag{
				Name:    "generation-model",
				Usage:   "Generation model name",
				Sources: cli.EnvVars("DOCQA_GENERATION_MODEL"),
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for OpenAI-compatible providers",
				Sources: cli.EnvVars("OPENAI_API_KEY", "OPENROUTER_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL; the NATS transport is disabled when empty",
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-creds",
				Usage:   "NATS user credentials file",
				Sources: cli.EnvVars("NATS_CREDS"),
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func loadConfig(cmd *cli.Command) (docqa.Config, error) {
	cfg, err := docqa.LoadConfig(cmd.String("config"))
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet("document") {
		cfg.Document.Path = cmd.String("document")
	}

	if cmd.IsSet("http-addr") {
		cfg.HTTP.Addr = cmd.String("http-addr")
	}

	if cmd.IsSet("embedding-provider") {
		cfg.Embedding.Provider = embedding.Provider(cmd.String("embedding-provider"))
	}

	if cmd.IsSet("embedding-model") {
		cfg.Embedding.Model = cmd.String("embedding-model")
	}

	if cmd.IsSet("generation-provider") {
		cfg.Generation.Provider = generation.Provider(cmd.String("generation-provider"))
	}

	if cmd.IsSet("generation-model") {
		cfg.Generation.Model = cmd.String("generation-model")
	}

	if apiKey := cmd.String("api-key"); apiKey != "" {
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = apiKey
		}

		if cfg.Generation.APIKey == "" {
			cfg.Generation.APIKey = apiKey
		}
	}

	if cmd.IsSet("nats") {
		cfg.NATS.URL = cmd.String("nats")
	}

	return cfg, cfg.Validate()
}

func run(ctx context.Context, cmd *cli.Command) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return err
	}

	vector, err := chromem.NewChromemVectorDB(cfg.Vector, embedder)
	if err != nil {
		return err
	}

	collection, err := vector.Collection(cfg.Vector.Collection)
	if err != nil {
		return err
	}

	count, err := docqa.Ingest(ctx, cfg, collection)
	if err != nil {
		return err
	}

	log.Info("document ready",
		zap.String("document", cfg.Document.Path),
		zap.Int("chunks", count),
	)

	generator, err := generation.New(cfg.Generation)
	if err != nil {
		return err
	}

	svc, err := docqa.NewService(cfg, collection, generator)
	if err != nil {
		return err
	}

	svc = docqa.LoggingMiddleware(log)(svc)
	defer svc.Close()

	endpoints := docqa.MakeEndpoints(svc)

	// Add NATS Transport
	if cfg.NATS.URL != "" {
		opts := []nats.Option{
			nats.Name("DocQA Server"),
		}

		if creds := cmd.String("nats-creds"); creds != "" {
			opts = append(opts, nats.UserCredentials(creds))
		}

		nc, err := nats.Connect(cfg.NATS.URL, opts...)
		if err != nil {
			return err
		}
		defer nc.Drain()

		srv, err := micro.AddService(nc, micro.Config{
			Name:    "docqa",
			Version: "1.0.0",
		})

		if err != nil {
			return err
		}
		defer srv.Stop()

		root := srv.AddGroup(cfg.NATS.Topic)
		natsT.AddEndpoints(root, endpoints)

		log.Info("nats transport enabled", zap.String("topic", cfg.NATS.Topic))
	}

	r := gin.Default()
	r.Use(httpT.CORS(cfg.HTTP.AllowOrigins))
	r.Use(httpT.RequestIDMiddleware())

	httpT.AddRouters(r, endpoints)
	httpT.AddStreamableRouters(r, mcpE.MakeEndpoints(svc))

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: r,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sign := <-quit:
		log.Info("graceful shutdown", zap.String("signal", sign.String()))

	case err := <-errs:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
