package recovery

import (
	"context"
	"fmt"
	"sync"
)

// StrictStrategy implements a fail-fast recovery strategy.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(ctx context.Context, err error, location Location) Action {
	return ActionFail
}

// LenientStrategy repairs what it can and records every problem it saw.
type LenientStrategy struct {
	mu     sync.Mutex
	errors []error
	// Notify, when set, is called for each recorded problem.
	Notify func(err error, location Location)
}

func NewLenientStrategy() *LenientStrategy {
	return &LenientStrategy{}
}

func (s *LenientStrategy) OnError(ctx context.Context, err error, location Location) Action {
	wrapped := fmt.Errorf("[%s] offset %d: %w", location.Component, location.ByteOffset, err)
	s.mu.Lock()
	s.errors = append(s.errors, wrapped)
	notify := s.Notify
	s.mu.Unlock()
	if notify != nil {
		notify(err, location)
	}
	if location.Component == "xref" {
		return ActionFix
	}
	return ActionWarn
}

// Errors returns the problems recorded so far.
func (s *LenientStrategy) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errors...)
}
