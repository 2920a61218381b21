package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/itchyny/gojq"
)

// compileJQ parses and compiles a jq filter string for repeated use against
// CLI output, the same two-step gojq.Parse/gojq.Compile sequence the
// teacher's wallet-matching --must-jq flag uses.
func compileJQ(filter string) (*gojq.Code, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
	}
	return code, nil
}

// runJQ re-marshals v through JSON into a generic value, runs code against
// it, and prints every result on its own line. Used to let operators filter
// or reshape JSON output (audit records, lifecycle events) without piping
// through an external jq binary.
func runJQ(code *gojq.Code, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for jq: %w", err)
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to decode value for jq: %w", err)
	}

	iter := code.Run(generic)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for {
		result, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := result.(error); ok {
			return fmt.Errorf("jq filter failed: %w", err)
		}
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode jq result: %w", err)
		}
	}
}
