// File: protocol/codec.go
package protocol

import "encoding/json"

// wireMessage mirrors Message's JSON shape but lets us detect a
// missing "type" key, which json.Unmarshal into Message can't by
// itself (a missing string field just unmarshals to "").
type wireMessage struct {
	Type      *string                `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp int64                  `json:"timestamp"`
	ClientID  string                 `json:"clientId"`
}

// Parse decodes and validates one frame. Validation is integrated
// here, not a separate step: an unknown type or a structurally wrong
// payload never becomes a Message the protocol state machine sees.
func Parse(frame []byte) (*Message, *ParseError) {
	var wire wireMessage
	if err := json.Unmarshal(frame, &wire); err != nil {
		return nil, &ParseError{Kind: ErrMalformedFrame, Detail: err.Error()}
	}
	if wire.Type == nil || *wire.Type == "" {
		return nil, &ParseError{Kind: ErrMissingType}
	}
	t := Type(*wire.Type)
	if !knownTypes[t] {
		return nil, &ParseError{Kind: ErrUnknownType, Detail: string(t)}
	}
	if wire.Payload == nil {
		wire.Payload = map[string]interface{}{}
	}
	if perr := validatePayload(t, wire.Payload); perr != nil {
		return nil, perr
	}

	return &Message{
		Type:      t,
		Payload:   wire.Payload,
		Timestamp: wire.Timestamp,
		ClientID:  wire.ClientID,
	}, nil
}

// validatePayload enforces the shape contracts from the wire table
// (spec §6) for message types whose payload has mandatory fields.
// Types with an entirely optional payload (CONNECT, DISCONNECT,
// RESTART, PING, PONG) accept any object, including {}.
func validatePayload(t Type, payload map[string]interface{}) *ParseError {
	switch t {
	case TypeMove:
		dx, dxOK := asInt(payload["dx"])
		dy, dyOK := asInt(payload["dy"])
		if !dxOK || !dyOK {
			return &ParseError{Kind: ErrInvalidPayloadShape, Detail: "MOVE requires numeric dx,dy"}
		}
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
			return &ParseError{Kind: ErrInvalidPayloadShape, Detail: "MOVE dx,dy must be in {-1,0,1}"}
		}
		if dx == 0 && dy == 0 {
			return &ParseError{Kind: ErrInvalidPayloadShape, Detail: "MOVE dx,dy cannot both be zero"}
		}
	case TypeSetPlayerName:
		if _, ok := payload["playerName"].(string); !ok {
			return &ParseError{Kind: ErrInvalidPayloadShape, Detail: "SET_PLAYER_NAME requires string playerName"}
		}
	}
	return nil
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), n == float64(int(n))
	case int:
		return n, true
	default:
		return 0, false
	}
}

// Encode serializes a Message to its canonical wire form, filling in
// a server-assigned Timestamp if the caller left it at zero.
func Encode(msg Message) ([]byte, error) {
	if msg.Timestamp == 0 {
		msg.Timestamp = NowMillis()
	}
	if msg.Payload == nil {
		msg.Payload = map[string]interface{}{}
	}
	return json.Marshal(msg)
}
