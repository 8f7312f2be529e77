// Package stop provides the process-wide cooperative cancellation signal
// used by every worker goroutine. It is a thin façade over
// threadgroup.ThreadGroup: Stop() sets the flag and blocks until every
// goroutine that called Add() has called Done(), so a caller that has
// Stop()ed can safely assume no worker touches shared state afterwards.
package stop

import (
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/NebulousLabs/threadgroup"
)

// Token is the cooperative cancellation flag consulted at the head of every
// worker loop and at both the scoop and nonce-batch loop heads inside the
// writer's write path.
type Token struct {
	tg threadgroup.ThreadGroup
}

// New returns a fresh, unstopped Token.
func New() *Token {
	return &Token{}
}

// Add registers a goroutine with the token. Add fails once Stop has been
// called, signalling the caller that it should not start new work.
func (t *Token) Add() error {
	return t.tg.Add()
}

// Done unregisters a goroutine previously registered with Add.
func (t *Token) Done() {
	t.tg.Done()
}

// Stopped reports whether the token has been set.
func (t *Token) Stopped() bool {
	select {
	case <-t.tg.StopChan():
		return true
	default:
		return false
	}
}

// StopChan returns a channel that is closed once Stop is called, for use in
// select statements guarding blocking queue pops and I/O.
func (t *Token) StopChan() <-chan struct{} {
	return t.tg.StopChan()
}

// Stop sets the flag and blocks until every goroutine added via Add has
// called Done.
func (t *Token) Stop() error {
	return t.tg.Stop()
}

// InstallSignalHandler sets the token the first time SIGINT or SIGTERM is
// received. A second signal is left to the default handler so an
// unresponsive shutdown can still be killed.
func (t *Token) InstallSignalHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		signal.Stop(sigChan)
		t.Stop()
	}()
}
