package router

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadPayload indicates the request body matched neither supported wire
// shape.
var ErrBadPayload = errors.New("unrecognized tool request payload")

type wireShape int

const (
	shapeBatch wireShape = iota
	shapeLegacy
)

// ToolRequest is a parsed tool webhook request. It remembers which wire
// shape the platform used so the reply can be rendered in kind.
type ToolRequest struct {
	Calls []ToolCall
	shape wireShape
}

// batchRequest is the tool-calls shape: the platform wraps one or more
// calls in a message envelope.
//
//	{"message": {"toolCalls": [{"id": "...", "function": {"name": "...", "arguments": {...}}}]}}
type batchRequest struct {
	Message struct {
		ToolCalls []struct {
			ID       string `json:"id"`
			Function struct {
				Name      string          `json:"name"`
				Arguments json.RawMessage `json:"arguments"`
			} `json:"function"`
		} `json:"toolCalls"`
	} `json:"message"`
}

// legacyRequest is the older flat shape some integrations still send.
//
//	{"toolCallId": "...", "toolName": "check_slots", "parameters": {...}}
type legacyRequest struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Parameters json.RawMessage `json:"parameters"`
}

// ParseToolRequest adapts either wire shape to the canonical form.
func ParseToolRequest(body []byte) (*ToolRequest, error) {
	var batch batchRequest
	if err := json.Unmarshal(body, &batch); err == nil && len(batch.Message.ToolCalls) > 0 {
		req := &ToolRequest{shape: shapeBatch}
		for _, tc := range batch.Message.ToolCalls {
			args, err := decodeArguments(tc.Function.Arguments)
			if err != nil {
				return nil, fmt.Errorf("%w: tool call %q: %v", ErrBadPayload, tc.ID, err)
			}
			req.Calls = append(req.Calls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: args,
			})
		}
		return req, nil
	}

	var legacy legacyRequest
	if err := json.Unmarshal(body, &legacy); err == nil && legacy.ToolName != "" {
		args, err := decodeArguments(legacy.Parameters)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return &ToolRequest{
			Calls: []ToolCall{{
				ID:        legacy.ToolCallID,
				Name:      legacy.ToolName,
				Arguments: args,
			}},
			shape: shapeLegacy,
		}, nil
	}

	return nil, ErrBadPayload
}

// Reply renders dispatch results in the wire shape the request arrived in.
// The batch shape correlates by toolCallId; the legacy shape carries a
// single flat result.
func (r *ToolRequest) Reply(results []ToolResult) any {
	if r.shape == shapeLegacy {
		reply := struct {
			Success bool   `json:"success"`
			Result  string `json:"result"`
		}{Success: true}
		if len(results) > 0 {
			reply.Result = results[0].Result
			reply.Success = !results[0].Unknown
		}
		return reply
	}

	type batchResult struct {
		ToolCallID string `json:"toolCallId"`
		Result     string `json:"result"`
	}
	reply := struct {
		Results []batchResult `json:"results"`
	}{Results: make([]batchResult, len(results))}
	for i, res := range results {
		reply.Results[i] = batchResult{ToolCallID: res.ID, Result: res.Result}
	}
	return reply
}

// decodeArguments normalizes tool arguments to a string map. Some
// integrations double-encode the arguments object as a JSON string, and
// scalar values may arrive as numbers or booleans.
func decodeArguments(raw json.RawMessage) (map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]string{}, nil
	}

	// Unwrap a double-encoded arguments object.
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}

	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("arguments are not an object: %w", err)
	}

	args := make(map[string]string, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case string:
			args[key] = v
		case nil:
			args[key] = ""
		default:
			args[key] = fmt.Sprintf("%v", v)
		}
	}
	return args, nil
}
