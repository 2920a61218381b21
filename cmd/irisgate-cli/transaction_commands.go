package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/brojonat/irisgate/client"
)

func transactionCommands() *cli.Command {
	return &cli.Command{
		Name:  "tx",
		Usage: "Submit transactions to the gateway",
		Subcommands: []*cli.Command{
			sendTransactionCommand(),
			sendBatchCommand(),
		},
	}
}

func sendConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "encoding",
			Usage: "Transaction wire encoding (base58 or base64)",
			Value: "base58",
		},
		&cli.BoolFlag{
			Name:  "skip-preflight",
			Usage: "Skip preflight simulation (the gateway currently requires this)",
			Value: true,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Client-requested retry cap, capped by the server maximum (unset means use the server default)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
			Value: 10 * time.Second,
		},
	}
}

func sendConfigFromFlags(c *cli.Context) client.SendConfig {
	cfg := client.SendConfig{
		Encoding:      c.String("encoding"),
		SkipPreflight: c.Bool("skip-preflight"),
	}
	if c.IsSet("max-retries") {
		n := c.Int("max-retries")
		cfg.MaxRetries = &n
	}
	return cfg
}

func sendTransactionCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Submit a single encoded transaction",
		ArgsUsage: "TRANSACTION",
		Flags:     sendConfigFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("requires exactly one argument: the encoded transaction")
			}

			cl := newClient(c, c.Duration("timeout"))
			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			signature, err := cl.SendTransaction(ctx, c.Args().Get(0), sendConfigFromFlags(c))
			if err != nil {
				return fmt.Errorf("send transaction failed: %w", err)
			}

			fmt.Printf("Signature: %s\n", signature)
			return nil
		},
	}
}

func sendBatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "send-batch",
		Usage:     "Submit a batch of encoded transactions, one per line on stdin or as arguments",
		ArgsUsage: "[TRANSACTION...]",
		Flags:     sendConfigFlags(),
		Action: func(c *cli.Context) error {
			batch := c.Args().Slice()
			if len(batch) == 0 {
				var err error
				batch, err = readLines(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read transactions from stdin: %w", err)
				}
			}
			if len(batch) == 0 {
				return fmt.Errorf("no transactions supplied (pass as arguments or pipe one per line on stdin)")
			}

			cl := newClient(c, c.Duration("timeout"))
			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			signatures, err := cl.SendTransactionBatch(ctx, batch, sendConfigFromFlags(c))
			if err != nil {
				return fmt.Errorf("send transaction batch failed: %w", err)
			}

			for _, sig := range signatures {
				fmt.Println(sig)
			}
			return nil
		},
	}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
