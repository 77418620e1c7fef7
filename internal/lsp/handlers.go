package lsp

import (
	"encoding/json"
)

// RegisterDefaultHandlers wires the small set of server-initiated
// notifications and requests this bridge cooperates with beyond the
// internally-handled publishDiagnostics. newClient calls it for every
// Client, so they are in place before Initialize.
func RegisterDefaultHandlers(c *Client) {
	c.RegisterNotificationHandler("window/showMessage", func(params json.RawMessage) error {
		var msg struct {
			Type    int    `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(params, &msg); err != nil {
			return err
		}
		c.logger.Infow("lsp server message", "type", msg.Type, "message", msg.Message)
		return nil
	})

	c.RegisterRequestHandler("workspace/configuration", func(params json.RawMessage) (any, error) {
		// No server-specific settings are configured; answer every item
		// in the request with an empty object.
		var req struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
		result := make([]map[string]any, len(req.Items))
		for i := range result {
			result[i] = map[string]any{}
		}
		return result, nil
	})

	c.RegisterRequestHandler("client/registerCapability", func(params json.RawMessage) (any, error) {
		return struct{}{}, nil
	})

	c.RegisterRequestHandler("workspace/applyEdit", func(params json.RawMessage) (any, error) {
		// Applying server-initiated workspace edits outside of the
		// rename_symbol tool flow is out of scope; acknowledge without
		// applying so well-behaved servers don't treat this as a hard
		// failure.
		return map[string]any{"applied": false}, nil
	})
}
