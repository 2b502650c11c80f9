package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/flarexio/docqa"

	natsT "github.com/flarexio/docqa/transport/nats"
)

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:      "docqa_ask",
		Usage:     "Ask a running DocQA server a question over NATS",
		ArgsUsage: "<question...>",
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
				Usage: "How long to wait for an answer",
				Value: docqa.DefaultNATSTimeout,
			},
			&cli.BoolFlag{
				Name:  "search",
				Usage: "Print the retrieved passages instead of an answer",
			},
			&cli.IntFlag{
				Name:  "k",
				Usage: "Number of passages to retrieve with --search; the server default when unset",
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
	question, err := joinQuestion(cmd.Args().Slice())
	if err != nil {
		return err
	}

	opts := []nats.Option{
		nats.Name("DocQA Client"),
	}

	if creds := cmd.String("nats-creds"); creds != "" {
		opts = append(opts, nats.UserCredentials(creds))
	}

	nc, err := nats.Connect(cmd.String("nats"), opts...)
	if err != nil {
		return err
	}
	defer nc.Drain()

	timeout := cmd.Duration("timeout")
	endpoints := natsT.MakeEndpoints(nc, cmd.String("topic"), timeout)

	var svc docqa.Service
	svc = docqa.ProxyMiddleware(endpoints)(svc)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx = context.WithValue(ctx, docqa.RequestID, uuid.NewString())

	if !cmd.Bool("search") {
		answer, err := svc.Ask(ctx, question)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("no answer within %s: %w", timeout, err)
			}

			return err
		}

		fmt.Println(answer)
		return nil
	}

	var k []int
	if cmd.IsSet("k") {
		k = append(k, int(cmd.Int("k")))
	}

	passages, err := svc.Search(ctx, question, k...)
	if err != nil {
		return err
	}

	return printPassages(os.Stdout, passages)
}

// joinQuestion lets the question be passed unquoted as several arguments.
func joinQuestion(args []string) (string, error) {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return "", docqa.ErrEmptyQuestion
	}

	return question, nil
}

func printPassages(w io.Writer, passages []docqa.Passage) error {
	for i, p := range passages {
		_, err := fmt.Fprintf(w, "[%d] chunk %d (score %.4f)\n%s\n\n", i+1, p.Index, p.Score, p.Text)
		if err != nil {
			return err
		}
	}

	return nil
}
