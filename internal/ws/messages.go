package ws

import "encoding/json"

const TopicBridge = "bridge"

// Request is a shell command sent by the page.
type Request struct {
	ID     string          `json:"id"`
	Action string          `json:"action"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Reply answers exactly one Request.
type Reply struct {
	ID      string          `json:"id"`
	OK      bool            `json:"ok"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func SuccessReply(id string, payload any) ([]byte, error) {
	r := Reply{ID: id, OK: true}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		r.Payload = raw
	}
	return json.Marshal(r)
}

func ErrorReply(id, message string) []byte {
	out, _ := json.Marshal(Reply{ID: id, Error: message})
	return out
}

func EventMessage(event string, data any) []byte {
	out, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return nil
	}
	return out
}
