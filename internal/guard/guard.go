// Package guard implements the request-generation guard: a monotonically
// increasing token minted once per page activation. Asynchronous work captures
// the token at launch and re-checks it before applying results; a stale token
// means the page moved on and the result must be dropped.
//
// This is not cancellation. In-flight calls are not aborted; only their
// effects are suppressed.
package guard

import "sync/atomic"

// Token identifies one page activation. The zero Token is never current.
type Token uint64

type Guard struct {
	current atomic.Uint64
}

func New() *Guard {
	return &Guard{}
}

// Begin mints the token for a new activation, superseding the previous one.
func (g *Guard) Begin() Token {
	return Token(g.current.Add(1))
}

// Current reports whether t still belongs to the active page. At most one
// token is current at any instant.
func (g *Guard) Current(t Token) bool {
	return t != 0 && uint64(t) == g.current.Load()
}

// Peek returns the token of the active page without starting a new
// activation, so launched work can capture the token it must stay fenced to.
func (g *Guard) Peek() Token {
	return Token(g.current.Load())
}

// Invalidate supersedes the current token without starting a new activation,
// so results tied to an evicted page can never land.
func (g *Guard) Invalidate() {
	g.current.Add(1)
}
