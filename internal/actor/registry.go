package actor

import (
	"context"
	"fmt"
	"sync"
)

// mailboxBuffer bounds how many jobs can be queued before Do blocks the
// sender. A blocked sender still honours its context.
const mailboxBuffer = 64

// Job is one unit of work executed on a key's mailbox goroutine.
type Job func(ctx context.Context) error

type envelope struct {
	ctx    context.Context
	job    Job
	result chan error
}

type mailbox struct {
	jobs    chan envelope
	pending int // guarded by Registry.mu
}

// Registry maps keys to single-writer mailboxes.
type Registry[K comparable] struct {
	mu        sync.Mutex
	mailboxes map[K]*mailbox
}

// NewRegistry creates an empty registry.
func NewRegistry[K comparable]() *Registry[K] {
	return &Registry[K]{mailboxes: make(map[K]*mailbox)}
}

// Do runs job on key's mailbox and waits for it to finish.
//
// If ctx ends while waiting, Do returns ctx.Err() and the job, if not yet
// started, is skipped. A job that has already started runs to completion.
func (r *Registry[K]) Do(ctx context.Context, key K, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := envelope{ctx: ctx, job: job, result: make(chan error, 1)}

	r.mu.Lock()
	mb, ok := r.mailboxes[key]
	if !ok {
		mb = &mailbox{jobs: make(chan envelope, mailboxBuffer)}
		r.mailboxes[key] = mb
		go r.run(key, mb)
	}
	mb.pending++
	r.mu.Unlock()

	// The worker cannot retire while pending > 0, so mb.jobs stays open
	// until this send either lands or is withdrawn.
	select {
	case mb.jobs <- env:
	case <-ctx.Done():
		r.withdraw(key, mb)
		return ctx.Err()
	}

	select {
	case err := <-env.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len reports how many keys currently have a live mailbox.
func (r *Registry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mailboxes)
}

// withdraw undoes the pending count of a send that never reached the
// mailbox. If nothing else is pending the worker is idle on an empty
// channel, so closing it retires the worker.
func (r *Registry[K]) withdraw(key K, mb *mailbox) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mb.pending--
	if mb.pending == 0 {
		if r.mailboxes[key] == mb {
			delete(r.mailboxes, key)
		}
		close(mb.jobs)
	}
}

func (r *Registry[K]) run(key K, mb *mailbox) {
	for env := range mb.jobs {
		env.result <- execute(env)

		r.mu.Lock()
		mb.pending--
		if mb.pending == 0 {
			if r.mailboxes[key] == mb {
				delete(r.mailboxes, key)
			}
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
	}
}

func execute(env envelope) (err error) {
	if err := env.ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("actor job panicked: %v", p)
		}
	}()
	return env.job(env.ctx)
}
