package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/brojonat/irisgate/service/audit"
)

func auditCommands() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Inspect the durable audit log of landed and evicted transactions",
		Subcommands: []*cli.Command{
			listLandedCommand(),
			listEvictedCommand(),
		},
	}
}

func listLandedCommand() *cli.Command {
	return &cli.Command{
		Name:  "landed",
		Usage: "List recently landed transactions",
		Flags: []cli.Flag{limitFlag(), jqFlag()},
		Action: func(c *cli.Context) error {
			return listByOutcome(c, "landed")
		},
	}
}

func listEvictedCommand() *cli.Command {
	return &cli.Command{
		Name:  "evicted",
		Usage: "List recently evicted transactions",
		Flags: []cli.Flag{limitFlag(), jqFlag()},
		Action: func(c *cli.Context) error {
			return listByOutcome(c, "evicted")
		},
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of records to return",
		Value: 50,
	}
}

// jqFlag adds a --jq filter to JSON-producing commands, letting operators
// reshape or filter output without piping through an external jq binary.
func jqFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "jq",
		Usage: "Filter JSON output through a jq expression (implies --json)",
	}
}

func listByOutcome(c *cli.Context, outcome string) error {
	store, closer, err := getAuditStore(c)
	if err != nil {
		return err
	}
	defer closer()

	records, err := store.RecentByOutcome(context.Background(), outcome, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to query audit log: %w", err)
	}

	if filter := c.String("jq"); filter != "" {
		code, err := compileJQ(filter)
		if err != nil {
			return err
		}
		return runJQ(code, records)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIGNATURE\tREASON\tSLOT\tLATENCY\tCREATED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Signature, r.Reason, r.Slot, r.Latency, r.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()

	fmt.Fprintf(os.Stderr, "\nTotal: %d %s\n", len(records), outcome)
	return nil
}

// getAuditStore connects to the audit database named by --database-url.
func getAuditStore(c *cli.Context) (*audit.Store, func(), error) {
	dbURL := c.String("database-url")
	if dbURL == "" {
		return nil, nil, fmt.Errorf("database-url is required (set DATABASE_URL env var or use --database-url)")
	}

	store, err := audit.Connect(context.Background(), dbURL, nil)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
