// Package ipc defines the message-passing contract between a webview UI and
// the host process that drives it. Both sides exchange flat JSON objects whose
// "type" field is the only dispatch key: actions travel UI→host, messages
// travel host→UI. Screen packages under ipc/ declare their own variants and
// register them next to the common ones declared here.
package ipc

import (
	"fmt"
)

// ActionType is the discriminant of an action sent from the UI to the host.
type ActionType string

// MessageType is the discriminant of a message sent from the host to the UI.
type MessageType string

// Action is a value sent UI→host. Implementations use value receivers so a
// decoded action and a hand-built one compare equal in a type switch.
type Action interface {
	ActionType() ActionType
}

// Message is a value sent host→UI.
type Message interface {
	MessageType() MessageType
}

// Nonced is implemented by actions and messages that carry an optional nonce
// used to tell concurrent requests of the same type apart.
type Nonced interface {
	GetNonce() string
}

// NonceOf returns v's nonce, or "" when v carries none.
func NonceOf(v any) string {
	if n, ok := v.(Nonced); ok {
		return n.GetNonce()
	}
	return ""
}

// UnhandledVariantError is the panic value raised by Unreachable.
type UnhandledVariantError struct {
	Value any
}

func (e *UnhandledVariantError) Error() string {
	switch v := e.Value.(type) {
	case Action:
		return fmt.Sprintf("ipc: unhandled action variant %T (%q)", v, v.ActionType())
	case Message:
		return fmt.Sprintf("ipc: unhandled message variant %T (%q)", v, v.MessageType())
	default:
		return fmt.Sprintf("ipc: unhandled variant %T", v)
	}
}

// Unreachable marks the default branch of an exhaustive switch over a closed
// union. Reaching it is a programming error, so it always panics.
func Unreachable(v any) {
	panic(&UnhandledVariantError{Value: v})
}
