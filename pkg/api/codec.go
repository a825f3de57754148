// Package api defines the Splitledger RPC surface: message types, procedure
// names, and Connect handler and client constructors.
//
// Messages are plain Go structs encoded as JSON, so the same endpoints serve
// the Connect protocol and simple curl requests:
//
//	curl -H 'Content-Type: application/json' -H "Authorization: Bearer $TOKEN" \
//	  -d '{"group_id":"..."}' localhost:8080/splitledger.v1.GroupService/GetGroupBalances
package api

import (
	"encoding/json"
	"fmt"
)

// Codec encodes messages with encoding/json. It registers under the name
// "json", replacing Connect's protobuf-only JSON codec.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}
