package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/shlex"
)

// JavaPathKind records whether the Java path is daemon-detected or pinned by
// the user.
type JavaPathKind string

const (
	JavaAutoDetect JavaPathKind = "auto_detect"
	JavaCustom     JavaPathKind = "custom"
)

// ArgumentsKind discriminates the Arguments union.
type ArgumentsKind string

const (
	ArgumentsParsed ArgumentsKind = "parsed"
	ArgumentsManual ArgumentsKind = "manual"
)

// UserKind records whether the server runs as the daemon's user or a
// specific one.
type UserKind string

const (
	UserCurrent  UserKind = "current"
	UserSpecific UserKind = "specific"
)

// Arguments is a tagged union: either a single string the daemon tokenizes
// with POSIX shell rules, or an explicit ordered argument list.
type Arguments struct {
	Kind   ArgumentsKind
	Parsed string
	Manual []string
}

// ParsedArguments wraps a shell-style argument string.
func ParsedArguments(s string) Arguments {
	return Arguments{Kind: ArgumentsParsed, Parsed: s}
}

// ManualArguments wraps an explicit argument list.
func ManualArguments(args ...string) Arguments {
	return Arguments{Kind: ArgumentsManual, Manual: args}
}

// Equal compares discriminant first, then payload. Manual lists compare by
// length and elementwise value.
func (a Arguments) Equal(b Arguments) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ArgumentsManual:
		if len(a.Manual) != len(b.Manual) {
			return false
		}
		for i := range a.Manual {
			if a.Manual[i] != b.Manual[i] {
				return false
			}
		}
		return true
	default:
		return a.Parsed == b.Parsed
	}
}

// Clone returns a copy that shares no backing storage with the receiver.
func (a Arguments) Clone() Arguments {
	if a.Kind == ArgumentsManual && a.Manual != nil {
		dup := make([]string, len(a.Manual))
		copy(dup, a.Manual)
		a.Manual = dup
	}
	return a
}

// Tokens materializes the final argument list. Parsed strings are tokenized
// with POSIX shell rules, matching what the daemon does at launch time.
func (a Arguments) Tokens() ([]string, error) {
	switch a.Kind {
	case ArgumentsManual:
		return a.Manual, nil
	case ArgumentsParsed:
		tokens, err := shlex.Split(a.Parsed)
		if err != nil {
			return nil, fmt.Errorf("tokenize arguments: %w", err)
		}
		return tokens, nil
	default:
		return nil, fmt.Errorf("unknown arguments kind %q", a.Kind)
	}
}

// Validate reports whether the arguments would survive daemon-side
// materialization. Only Parsed strings can fail.
func (a Arguments) Validate() error {
	_, err := a.Tokens()
	return err
}

type argumentsWire struct {
	Kind  ArgumentsKind   `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes only the payload selected by the discriminant.
func (a Arguments) MarshalJSON() ([]byte, error) {
	var value any
	switch a.Kind {
	case ArgumentsManual:
		if a.Manual == nil {
			value = []string{}
		} else {
			value = a.Manual
		}
	case ArgumentsParsed:
		value = a.Parsed
	default:
		return nil, fmt.Errorf("unknown arguments kind %q", a.Kind)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(argumentsWire{Kind: a.Kind, Value: raw})
}

func (a *Arguments) UnmarshalJSON(data []byte) error {
	var wire argumentsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Kind {
	case ArgumentsManual:
		var list []string
		if err := json.Unmarshal(wire.Value, &list); err != nil {
			return fmt.Errorf("manual arguments payload: %w", err)
		}
		*a = Arguments{Kind: ArgumentsManual, Manual: list}
	case ArgumentsParsed:
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return fmt.Errorf("parsed arguments payload: %w", err)
		}
		*a = Arguments{Kind: ArgumentsParsed, Parsed: s}
	default:
		return fmt.Errorf("unknown arguments kind %q", wire.Kind)
	}
	return nil
}

// ResolvedConfig is the daemon's launch configuration with every derived
// field materialized. User is empty when the server runs as the daemon's
// own user.
type ResolvedConfig struct {
	JavaPath      string    `json:"java_path"`
	ServerJarPath string    `json:"server_jar_path"`
	Arguments     Arguments `json:"arguments"`
	User          string    `json:"user,omitempty"`
}

// Equal compares every field structurally.
func (c ResolvedConfig) Equal(o ResolvedConfig) bool {
	return c.JavaPath == o.JavaPath &&
		c.ServerJarPath == o.ServerJarPath &&
		c.Arguments.Equal(o.Arguments) &&
		c.User == o.User
}

// Clone returns a deep copy of the config.
func (c ResolvedConfig) Clone() ResolvedConfig {
	c.Arguments = c.Arguments.Clone()
	return c
}

// ConfigMask records, per field, whether the resolved value is a user
// override or derived by the daemon.
type ConfigMask struct {
	JavaPath  JavaPathKind  `json:"java_path"`
	Arguments ArgumentsKind `json:"arguments"`
	User      UserKind      `json:"user"`
}
