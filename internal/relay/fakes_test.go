package relay

import (
	"sync"

	"github.com/AryanXCode646/Karyakshetra/internal/wire"
)

type fakeSink struct {
	mu       sync.Mutex
	envs     []wire.Envelope
	closed   int
	writable bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{writable: true}
}

func (s *fakeSink) Send(env wire.Envelope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed > 0 || !s.writable {
		return false
	}
	s.envs = append(s.envs, env)
	return true
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
}

func (s *fakeSink) setWritable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writable = v
}

func (s *fakeSink) received() []wire.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wire.Envelope, len(s.envs))
	copy(out, s.envs)
	return out
}

func (s *fakeSink) ofKind(kind wire.Kind) []wire.Envelope {
	var out []wire.Envelope
	for _, env := range s.received() {
		if env.Type == kind {
			out = append(out, env)
		}
	}
	return out
}

func (s *fakeSink) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []SaveEvent
}

func (r *fakeRecorder) RecordSave(evt SaveEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func sequentialIDs(ids ...string) func() string {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(ids) {
			return ""
		}
		id := ids[next]
		next++
		return id
	}
}
