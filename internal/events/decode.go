package events

import (
	"encoding/json"
	"fmt"
)

func decodePayload(env Envelope, target any) error {
	if err := json.Unmarshal(env.Payload, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.RoutingKey, err)
	}
	return nil
}
