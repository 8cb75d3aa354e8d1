package ipc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// StdioTransport carries newline-delimited JSON over a reader and a writer,
// typically the stdio of a host subprocess or of the current process.
type StdioTransport struct {
	cmd    *exec.Cmd // nil when created from streams
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer

	mu       sync.Mutex // serializes writes
	inbox    *queue
	readOnce sync.Once
	readErr  error
}

// NewStdioTransport connects to r and w. Closing the transport closes r.
func NewStdioTransport(r io.ReadCloser, w io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: bufio.NewReader(r),
		writer: w,
		closer: r,
		inbox:  newQueue(),
	}
}

// SpawnStdioTransport starts command and connects to its stdin and stdout.
func SpawnStdioTransport(command string, args []string, env []string) (*StdioTransport, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = append(cmd.Environ(), env...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command, err)
	}
	t := NewStdioTransport(stdout, stdin)
	t.cmd = cmd
	t.closer = stdin
	return t, nil
}

// Send writes one payload followed by a newline.
func (t *StdioTransport) Send(data []byte) error {
	if bytes.IndexByte(data, '\n') >= 0 {
		data = compactLine(data)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	buf := make([]byte, 0, len(data)+1)
	buf = append(append(buf, data...), '\n')
	if _, err := t.writer.Write(buf); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// Receive returns the next non-empty line. It returns io.EOF once the reader
// is exhausted and all buffered lines were consumed.
func (t *StdioTransport) Receive(ctx context.Context) ([]byte, error) {
	t.readOnce.Do(func() { go t.readLoop() })
	data, err := t.inbox.pop(ctx)
	if err == io.EOF && t.readErr != nil {
		return nil, t.readErr
	}
	return data, err
}

func (t *StdioTransport) readLoop() {
	for {
		line, err := t.reader.ReadBytes('\n')
		if line = bytes.TrimSpace(line); len(line) > 0 {
			_ = t.inbox.push(line)
		}
		if err != nil {
			if err != io.EOF {
				t.inbox.mu.Lock()
				t.readErr = fmt.Errorf("read payload: %w", err)
				t.inbox.mu.Unlock()
			}
			t.inbox.close()
			return
		}
	}
}

// Close closes the underlying stream and waits for a spawned process.
func (t *StdioTransport) Close() error {
	t.closer.Close()
	if t.cmd != nil {
		return t.cmd.Wait()
	}
	return nil
}

func compactLine(data []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return bytes.ReplaceAll(data, []byte("\n"), nil)
	}
	return buf.Bytes()
}
