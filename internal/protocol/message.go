package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the kind of message exchanged with the daemon over
// the WebSocket session. Requests carry a task id that the daemon echoes on
// the matching response; pushes carry none.
type MessageType string

const (
	// Client to daemon requests.
	MessageTypeGetConfig        MessageType = "config.get"
	MessageTypeUpdateConfig     MessageType = "config.update"
	MessageTypeGetProcessState  MessageType = "process.get"
	MessageTypePerformOperation MessageType = "operation.perform"
	MessageTypeInput            MessageType = "console.input"
	MessageTypeShutdown         MessageType = "daemon.shutdown"

	// Daemon to client responses.
	MessageTypeAck          MessageType = "ack"
	MessageTypeError        MessageType = "error"
	MessageTypeConfigState  MessageType = "config.state"
	MessageTypeProcessState MessageType = "process.state"

	// Daemon to client pushes.
	MessageTypeConfigChanged       MessageType = "config.changed"
	MessageTypeProcessStateUpdated MessageType = "process.updated"
	MessageTypeOperationRequested  MessageType = "operation.requested"
	MessageTypeOperationPerformed  MessageType = "operation.performed"
	MessageTypeOperationFailed     MessageType = "operation.failed"
	MessageTypeStdout              MessageType = "console.stdout"
	MessageTypeStderr              MessageType = "console.stderr"
	MessageTypeFatalError          MessageType = "daemon.fatal"
	MessageTypeShuttingDown        MessageType = "daemon.shutting_down"
)

// Envelope frames every message on the wire.
type Envelope struct {
	Type    MessageType     `json:"type"`
	TaskID  string          `json:"task_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope builds an envelope, marshaling payload when non-nil.
func NewEnvelope(t MessageType, taskID string, payload any) (Envelope, error) {
	env := Envelope{Type: t, TaskID: taskID}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s payload: %w", t, err)
		}
		env.Payload = raw
	}
	return env, nil
}

// Decode unmarshals the payload into dest.
func (e Envelope) Decode(dest any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s: empty payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, dest); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// ConfigStatePayload answers config.get and carries config.changed pushes.
// Present is false for an unconfigured daemon, which is a valid condition
// rather than an error.
type ConfigStatePayload struct {
	Present bool            `json:"present"`
	Config  *ResolvedConfig `json:"config,omitempty"`
	Mask    *ConfigMask     `json:"mask,omitempty"`
}

// UpdateConfigPayload carries a config.update request.
type UpdateConfigPayload struct {
	Config ResolvedConfig `json:"config"`
	Mask   ConfigMask     `json:"mask"`
}

// OperationPayload carries operation.perform requests and the
// operation.requested / operation.performed pushes.
type OperationPayload struct {
	Operation Operation `json:"operation"`
}

// OperationFailedPayload carries an operation.failed push.
type OperationFailedPayload struct {
	Operation Operation `json:"operation"`
	Message   string    `json:"message"`
}

// ProcessStatePayload answers process.get and carries process.updated.
type ProcessStatePayload struct {
	State ProcessState `json:"state"`
}

// OutputPayload carries one stdout or stderr chunk. The bytes are raw
// terminal output; JSON base64-encodes them in transit.
type OutputPayload struct {
	Chunk []byte `json:"chunk"`
}

// InputPayload carries console input bytes to the managed server's stdin.
type InputPayload struct {
	Data []byte `json:"data"`
}

// ErrorPayload is the daemon's failure response. Codes are stable
// dotted identifiers of the form domain.error.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes the client distinguishes. Anything else is surfaced verbatim.
const (
	CodeNotLocalClient = "daemon.not_local_client"
	CodeConfigInvalid  = "config.invalid"
)

// FatalErrorPayload carries a daemon.fatal push.
type FatalErrorPayload struct {
	Message string `json:"message"`
}
