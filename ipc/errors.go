package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrTimeout is returned by PostAndAwait when no matching reply arrived in
// time. The remote side may still have acted on the request.
var ErrTimeout = errors.New("ipc: timed out waiting for reply")

// ErrorReason is the payload of an error message. On the wire it is either a
// bare string or an object with optional title and errorMessages fields plus
// any fields copied from an HTTP response body.
type ErrorReason struct {
	Text          string
	Title         string
	ErrorMessages []string
	Details       map[string]any
}

// String renders the reason as one line for banners and logs.
func (r ErrorReason) String() string {
	if r.isText() {
		return r.Text
	}
	parts := make([]string, 0, len(r.ErrorMessages)+1)
	if r.Title != "" {
		parts = append(parts, r.Title)
	}
	parts = append(parts, r.ErrorMessages...)
	if len(parts) == 0 {
		if msg, ok := r.Details["message"].(string); ok {
			return msg
		}
		return "unknown error"
	}
	return strings.Join(parts, ": ")
}

func (r ErrorReason) isText() bool {
	return r.Title == "" && r.ErrorMessages == nil && r.Details == nil
}

func (r ErrorReason) MarshalJSON() ([]byte, error) {
	if r.isText() {
		return json.Marshal(r.Text)
	}
	out := make(map[string]any, len(r.Details)+2)
	for k, v := range r.Details {
		out[k] = v
	}
	// The explicit title always wins over a body field of the same name.
	delete(out, "title")
	if r.Title != "" {
		out["title"] = r.Title
	}
	if r.ErrorMessages != nil {
		out["errorMessages"] = r.ErrorMessages
	}
	return json.Marshal(out)
}

func (r *ErrorReason) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*r = ErrorReason{Text: text}
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("error reason must be a string or object: %w", err)
	}
	*r = ErrorReason{}
	if t, ok := obj["title"].(string); ok {
		r.Title = t
		delete(obj, "title")
	}
	if raw, ok := obj["errorMessages"].([]any); ok {
		r.ErrorMessages = make([]string, 0, len(raw))
		for _, m := range raw {
			r.ErrorMessages = append(r.ErrorMessages, fmt.Sprint(m))
		}
		delete(obj, "errorMessages")
	}
	if len(obj) > 0 {
		r.Details = obj
	}
	if r.isText() {
		// An empty object still decodes as an object.
		r.Details = map[string]any{}
	}
	return nil
}

// ResponseBodyError is implemented by errors that carry a decoded HTTP
// response body.
type ResponseBodyError interface {
	error
	ResponseBody() map[string]any
}

// HTTPError is a failed HTTP call whose body was decoded as JSON.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       map[string]any
}

func (e *HTTPError) Error() string {
	if msg, ok := e.Body["message"].(string); ok && msg != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, msg)
	}
	if e.Status != "" {
		return "http " + e.Status
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

func (e *HTTPError) ResponseBody() map[string]any { return e.Body }

// GitError is a failed git invocation with its captured stderr.
type GitError struct {
	Message string
	Stderr  string
	Args    []string
}

func (e *GitError) Error() string {
	if e.Stderr == "" {
		return e.Message
	}
	return e.Message + ": " + e.Stderr
}

// RemoteError is returned by PostAndAwait when the other side answered the
// request with an error message.
type RemoteError struct {
	Reason ErrorReason
	Nonce  string
}

func (e *RemoteError) Error() string {
	return "ipc: remote error: " + e.Reason.String()
}

// FormatError turns any failure into the reason shown to the user.
func FormatError(e any, title string) ErrorReason {
	if e == nil {
		return ErrorReason{Text: "unknown error"}
	}
	err, isErr := e.(error)
	if !isErr {
		return ErrorReason{Title: title, ErrorMessages: []string{fmt.Sprint(e)}}
	}

	var bodyErr ResponseBodyError
	if errors.As(err, &bodyErr) {
		if body := bodyErr.ResponseBody(); body != nil {
			details := make(map[string]any, len(body))
			for k, v := range body {
				details[k] = v
			}
			return ErrorReason{Title: title, Details: details}
		}
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) && gitErr.Message != "" && gitErr.Stderr != "" {
		if title == "" {
			return ErrorReason{Title: gitErr.Message, ErrorMessages: []string{gitErr.Stderr}}
		}
		return ErrorReason{Title: title, ErrorMessages: []string{gitErr.Message, gitErr.Stderr}}
	}

	return ErrorReason{Title: title, ErrorMessages: []string{err.Error()}}
}
