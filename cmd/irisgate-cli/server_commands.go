package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/brojonat/irisgate/client"
)

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check gateway health",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: 5 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			cl := newClient(c, c.Duration("timeout"))

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			status, err := cl.Health(ctx)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			fmt.Printf("✓ Gateway is healthy: %s\n", status)
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show gateway and CLI version information",
		Action: func(c *cli.Context) error {
			fmt.Printf("irisgate-cli\n")
			fmt.Printf("  Version: %s\n", version)
			fmt.Printf("  Commit:  %s\n", commit)
			fmt.Printf("  Built:   %s\n", date)

			cl := newClient(c, 5*time.Second)
			gatewayVersion, err := cl.Version(context.Background())
			if err != nil {
				fmt.Printf("  Gateway: unreachable (%v)\n", err)
				return nil
			}
			fmt.Printf("  Gateway: %s\n", gatewayVersion)
			return nil
		},
	}
}

// newClient builds a client.Client from the global --server-url flag.
func newClient(c *cli.Context, timeout time.Duration) *client.Client {
	serverURL := c.String("server-url")
	httpClient := &http.Client{Timeout: timeout}
	return client.NewClient(serverURL, httpClient, nil)
}
