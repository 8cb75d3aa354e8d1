package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TypeField is the name of the discriminant field on the wire.
const TypeField = "type"

var (
	// ErrMissingType is returned when an inbound payload has no string "type".
	ErrMissingType = errors.New("ipc: payload has no type field")
	// ErrUnknownType is returned when the discriminant is not registered.
	ErrUnknownType = errors.New("ipc: unknown type")
)

// registry maps a discriminant to the concrete Go type decoded for it.
type registry struct {
	types map[string]reflect.Type
}

func newRegistry() registry {
	return registry{types: make(map[string]reflect.Type)}
}

func (r registry) add(key string, v any) {
	if key == "" {
		panic(fmt.Sprintf("ipc: %T registered with an empty discriminant", v))
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		panic(fmt.Sprintf("ipc: %s must be registered as a value, not a pointer", key))
	}
	if prev, ok := r.types[key]; ok && prev != t {
		panic(fmt.Sprintf("ipc: discriminant %q registered for both %s and %s", key, prev, t))
	}
	r.types[key] = t
}

func (r registry) decode(data []byte) (any, error) {
	res := gjson.GetBytes(data, TypeField)
	if !res.Exists() || res.Type != gjson.String {
		return nil, ErrMissingType
	}
	t, ok := r.types[res.String()]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, res.String())
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("decode %q: %w", res.String(), err)
	}
	return ptr.Elem().Interface(), nil
}

func (r registry) keys() []string {
	out := make([]string, 0, len(r.types))
	for k := range r.types {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r registry) zero(key string) (any, bool) {
	t, ok := r.types[key]
	if !ok {
		return nil, false
	}
	return reflect.Zero(t).Interface(), true
}

// ActionRegistry is the closed set of actions one screen accepts.
type ActionRegistry struct {
	r registry
}

// NewActionRegistry builds a registry from zero values of each variant.
func NewActionRegistry(variants ...Action) *ActionRegistry {
	ar := &ActionRegistry{r: newRegistry()}
	for _, v := range variants {
		ar.r.add(string(v.ActionType()), v)
	}
	return ar
}

// Decode parses one wire payload into its registered action type.
func (ar *ActionRegistry) Decode(data []byte) (Action, error) {
	v, err := ar.r.decode(data)
	if err != nil {
		return nil, err
	}
	return v.(Action), nil
}

// Types lists every registered discriminant in sorted order.
func (ar *ActionRegistry) Types() []ActionType {
	keys := ar.r.keys()
	out := make([]ActionType, len(keys))
	for i, k := range keys {
		out[i] = ActionType(k)
	}
	return out
}

// Zero returns the zero value registered for t.
func (ar *ActionRegistry) Zero(t ActionType) (Action, bool) {
	v, ok := ar.r.zero(string(t))
	if !ok {
		return nil, false
	}
	return v.(Action), true
}

// MessageRegistry is the closed set of messages one screen's UI accepts.
type MessageRegistry struct {
	r registry
}

// NewMessageRegistry builds a registry from zero values of each variant.
func NewMessageRegistry(variants ...Message) *MessageRegistry {
	mr := &MessageRegistry{r: newRegistry()}
	for _, v := range variants {
		mr.r.add(string(v.MessageType()), v)
	}
	return mr
}

// Decode parses one wire payload into its registered message type.
func (mr *MessageRegistry) Decode(data []byte) (Message, error) {
	v, err := mr.r.decode(data)
	if err != nil {
		return nil, err
	}
	return v.(Message), nil
}

// Types lists every registered discriminant in sorted order.
func (mr *MessageRegistry) Types() []MessageType {
	keys := mr.r.keys()
	out := make([]MessageType, len(keys))
	for i, k := range keys {
		out[i] = MessageType(k)
	}
	return out
}

// Zero returns the zero value registered for t.
func (mr *MessageRegistry) Zero(t MessageType) (Message, bool) {
	v, ok := mr.r.zero(string(t))
	if !ok {
		return nil, false
	}
	return v.(Message), true
}

// EncodeAction renders a as a flat JSON object with its discriminant injected.
func EncodeAction(a Action) ([]byte, error) {
	return encode(a, string(a.ActionType()))
}

// EncodeMessage renders m as a flat JSON object with its discriminant injected.
func EncodeMessage(m Message) ([]byte, error) {
	return encode(m, string(m.MessageType()))
}

func encode(v any, discriminant string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", discriminant, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("encode %q: payload must marshal to a JSON object", discriminant)
	}
	out, err := sjson.SetBytes(data, TypeField, discriminant)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", discriminant, err)
	}
	return out, nil
}
