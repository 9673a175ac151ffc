package types

// VoiceRequest is the transport-level payload for a single voice turn.
type VoiceRequest struct {
	Command   string `json:"command"`
	SessionID string `json:"session_id"`
}

// VoiceResponse is always returned with Status "success"; classification and
// validation problems degrade to a conversational reprompt rather than a
// transport error.
type VoiceResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Command   string `json:"command,omitempty"`
	Response  string `json:"response"`
	Speak     string `json:"speak"`
	Action    string `json:"action,omitempty"`
	Data      any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
