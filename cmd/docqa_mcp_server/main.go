package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/flarexio/docqa"

	mcpE "github.com/flarexio/docqa/mcp"
	natsT "github.com/flarexio/docqa/transport/nats"
)

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "docqa_mcp_server",
		Usage: "Stdio MCP server backed by a DocQA server reached over NATS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL",
				Value:   nats.DefaultURL,
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-creds",
				Usage:   "NATS user credentials file",
				Sources: cli.EnvVars("NATS_CREDS"),
			},
			&cli.StringFlag{
				Name:  "topic",
				Usage: "Topic the DocQA server is registered under",
				Value: docqa.DefaultNATSTopic,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for each reply",
				Value: docqa.DefaultNATSTimeout,
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []nats.Option{
		nats.Name("DocQA MCP Server"),
	}

	if creds := cmd.String("nats-creds"); creds != "" {
		opts = append(opts, nats.UserCredentials(creds))
	}

	nc, err := nats.Connect(cmd.String("nats"), opts...)
	if err != nil {
		return err
	}
	defer nc.Drain()

	endpoints := natsT.MakeEndpoints(nc, cmd.String("topic"), cmd.Duration("timeout"))

	var svc docqa.Service
	svc = docqa.ProxyMiddleware(endpoints)(svc)

	s := mcpE.NewStdioServer(os.Stdin, os.Stdout)
	if err := mcpE.AddEndpoints(s, mcpE.MakeEndpoints(svc)); err != nil {
		return err
	}

	errs := make(chan error, 1)
	go func() {
		errs <- s.Listen(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-quit:
	case err := <-errs:
		return err
	}

	cancel()
	return nil
}
