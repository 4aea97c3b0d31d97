package research

import (
	"bytes"
	"encoding/json"
)

// apiEnvelope is the wrapper some research endpoints nest their payload in.
// Others return the payload bare. decodeEnvelope normalizes both shapes here,
// once, so no caller ever branches on response nesting.
type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func decodeEnvelope(body []byte, out interface{}) error {
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err == nil && hasPayload(env.Data) {
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(body, out)
}

func hasPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
