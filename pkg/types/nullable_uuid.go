package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// NullableUUID tells an absent JSON field apart from an explicit null.
// Update payloads use it so `"shipping_plan_id": null` detaches a plan while
// omitting the field leaves it alone. An empty string counts as null, which
// is what HTML selects send for "none".
type NullableUUID struct {
	Valid bool
	Value *uuid.UUID
}

func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	n.Valid = true
	n.Value = nil
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("invalid uuid: %w", err)
	}
	n.Value = &id
	return nil
}

// Cleared reports an explicit null.
func (n NullableUUID) Cleared() bool {
	return n.Valid && n.Value == nil
}
