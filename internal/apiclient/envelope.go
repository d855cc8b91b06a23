package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The backend serializes some lists as {"$values": [...]}. Unwrapping
// happens once, here, so no call site ever sees the envelope.
func unwrapList(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '[' {
		return trimmed, nil
	}

	var envelope struct {
		Values json.RawMessage `json:"$values"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("unwrap list envelope: %w", err)
	}
	if envelope.Values == nil {
		return nil, fmt.Errorf("unwrap list envelope: no $values field")
	}
	return envelope.Values, nil
}

func decodeList(data []byte, out any) error {
	inner, err := unwrapList(data)
	if err != nil {
		return err
	}
	if len(inner) == 0 {
		return nil
	}
	if err := json.Unmarshal(inner, out); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}
	return nil
}
