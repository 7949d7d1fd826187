package connection

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bell24h/realtime/internal/protocol"
)

var errBrokenPipe = errors.New("write: broken pipe")

// fakeSocket records writes in memory.
type fakeSocket struct {
	mu         sync.Mutex
	writes     [][]byte
	msgTypes   []int
	closeCount int
	failWrites bool
	gate       chan struct{} // When set, each write waits for a receive
}

func (s *fakeSocket) WriteMessage(messageType int, data []byte) error {
	if s.gate != nil {
		<-s.gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return errBrokenPipe
	}
	s.writes = append(s.writes, append([]byte(nil), data...))
	s.msgTypes = append(s.msgTypes, messageType)
	return nil
}

func (s *fakeSocket) SetWriteDeadline(time.Time) error { return nil }

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCount++
	return nil
}

func (s *fakeSocket) setFailWrites(fail bool) {
	s.mu.Lock()
	s.failWrites = fail
	s.mu.Unlock()
}

func (s *fakeSocket) closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCount
}

// envelopes decodes every frame written so far.
func (s *fakeSocket) envelopes(t *testing.T) []protocol.Envelope {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]protocol.Envelope, 0, len(s.writes))
	for i, data := range s.writes {
		if s.msgTypes[i] != websocket.TextMessage {
			t.Errorf("frame %d written as message type %d, want text", i, s.msgTypes[i])
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("frame %d is not an envelope: %v", i, err)
		}
		result = append(result, env)
	}
	return result
}

func (s *fakeSocket) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func newTestConn(t *testing.T) (*Conn, *fakeSocket) {
	t.Helper()
	sock := &fakeSocket{}
	c := NewConn(sock, DefaultConnConfig(), nil, nil)
	t.Cleanup(func() { c.Close() })
	return c, sock
}
