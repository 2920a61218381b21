package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	"github.com/brojonat/irisgate/client"
)

func eventsCommands() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Lifecycle event streaming commands",
		Subcommands: []*cli.Command{
			watchCommand(),
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Stream lifecycle events (admitted, retried, landed, evicted) until interrupted",
		Flags: []cli.Flag{jqFlag()},
		Action: func(c *cli.Context) error {
			serverURL := c.String("server-url")
			cl := client.NewClient(serverURL, &http.Client{Timeout: 0}, nil)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var jqCode *gojq.Code
			if filter := c.String("jq"); filter != "" {
				code, err := compileJQ(filter)
				if err != nil {
					return err
				}
				jqCode = code
			}

			jsonOutput := c.Bool("json")
			fmt.Fprintf(os.Stderr, "watching lifecycle events on %s (ctrl-c to stop)...\n", serverURL)

			err := cl.StreamEvents(ctx, func(event client.LifecycleEvent) error {
				if jqCode != nil {
					return runJQ(jqCode, event)
				}
				if jsonOutput {
					data, err := json.Marshal(event)
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					return nil
				}
				fmt.Printf("%-9s %s %v\n", event.Kind, event.Signature, event.Fields)
				return nil
			})
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("event stream failed: %w", err)
			}
			return nil
		},
	}
}
