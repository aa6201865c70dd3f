// Package core holds the database state and the single actor allowed to touch
// it. Connection handlers never see the store; they submit commands through a
// Sender and wait for the reply value.
package core

import (
	"context"
	"errors"
	"sync"
)

// ErrDispatcherDown reports a submission against a stopped actor. Connection
// handlers treat it as fatal for their connection.
var ErrDispatcherDown = errors.New("core: dispatcher unavailable")

type envelope struct {
	cmd   Command
	reply chan Value
}

// Actor owns the store for its whole lifetime and executes commands strictly
// one at a time, in inbox order. That serialization is the only concurrency
// control in the system; there is no lock anywhere near the store.
type Actor struct {
	inbox chan envelope
	quit  chan struct{}
	done  chan struct{}

	stopOnce sync.Once
}

// Start allocates an empty store and spawns the receive loop.
func Start() *Actor {
	a := &Actor{
		inbox: make(chan envelope),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Actor) run() {
	defer close(a.done)
	st := make(Store)
	for {
		select {
		case <-a.quit:
			return
		case env := <-a.inbox:
			// reply is buffered, so an abandoned waiter never blocks the loop.
			env.reply <- Dispatch(st, env.cmd)
		}
	}
}

// Stop halts the receive loop and discards the store. Safe to call more than
// once. In-flight Submit calls fail with ErrDispatcherDown.
func (a *Actor) Stop() {
	a.stopOnce.Do(func() { close(a.quit) })
	<-a.done
}

// Sender returns the submission handle. The handle is shareable: any number of
// goroutines may call Submit on the same Sender concurrently.
func (a *Actor) Sender() *Sender {
	return &Sender{actor: a}
}

type Sender struct {
	actor *Actor
}

// Submit enqueues the command and waits for its reply. It is synchronous from
// the caller's point of view: when it returns, the command has been applied (or
// the actor is down).
func (s *Sender) Submit(ctx context.Context, cmd Command) (Value, error) {
	reply := make(chan Value, 1)
	select {
	case s.actor.inbox <- envelope{cmd: cmd, reply: reply}:
	case <-s.actor.done:
		return Value{}, ErrDispatcherDown
	case <-ctx.Done():
		return Value{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-s.actor.done:
		// The loop may have replied in the same instant it was stopped.
		select {
		case v := <-reply:
			return v, nil
		default:
			return Value{}, ErrDispatcherDown
		}
	case <-ctx.Done():
		// The command may still execute; the buffered reply is simply dropped.
		return Value{}, ctx.Err()
	}
}
