// internal/ixapi/session.go

package ixapi

import "sync"

// Caller sends commands to the remote interpreter.
type Caller interface {
	Call(format string, args ...any) (string, error)
	CallRC(format string, args ...any) error
}

// Session holds the state shared by every object talking through one
// connection: the auto-set mode and, per command type, the object whose
// attributes the server currently holds.
type Session struct {
	caller Caller

	mu      sync.Mutex
	autoSet bool
	current map[string]*Object
}

// NewSession returns a session with auto-set enabled.
func NewSession(caller Caller) *Session {
	return &Session{
		caller:  caller,
		autoSet: true,
		current: make(map[string]*Object),
	}
}

// Caller returns the underlying caller.
func (s *Session) Caller() Caller {
	return s.caller
}

// AutoSet reports whether writes are committed immediately.
func (s *Session) AutoSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSet
}

// SetAutoSet changes the auto-set mode and returns the previous one.
func (s *Session) SetAutoSet(on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.autoSet
	s.autoSet = on
	return prev
}

// Current returns the object last fetched for command, or nil.
func (s *Session) Current(command string) *Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current[command]
}

func (s *Session) setCurrent(command string, o *Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o == nil {
		delete(s.current, command)
		return
	}
	s.current[command] = o
}

// Invalidate forgets every fetched object.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = make(map[string]*Object)
}
