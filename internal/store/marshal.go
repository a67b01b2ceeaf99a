package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/keepline/internal/engine"
	"github.com/roach88/keepline/internal/ir"
)

// marshalCommand converts a command to canonical JSON TEXT for storage and
// returns its content hash alongside.
func marshalCommand(cmd engine.Command) (args string, hash string, err error) {
	payload := cmd.Payload()
	data, err := ir.MarshalCanonical(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal command: %w", err)
	}
	hash, err = ir.CommandHash(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal command: %w", err)
	}
	return string(data), hash, nil
}

// unmarshalCommand parses canonical JSON TEXT back to a command. The payload
// keys match Command's JSON tags, so encoding/json restores it directly.
func unmarshalCommand(data string) (engine.Command, error) {
	var cmd engine.Command
	if err := json.Unmarshal([]byte(data), &cmd); err != nil {
		return engine.Command{}, fmt.Errorf("unmarshal command: %w", err)
	}
	return cmd, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
