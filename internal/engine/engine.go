package engine

import "context"

// Backend executes resolved jobs and reports which runtimes it supports.
// Two implementations exist: the remote piston client and the local
// docker executor.
type Backend interface {
	Runtimes(ctx context.Context) ([]Runtime, error)
	Execute(ctx context.Context, job Job) (*Outcome, error)
}

// Catalog serves the cached runtime list. force bypasses the TTL.
type Catalog interface {
	Runtimes(ctx context.Context, force bool) ([]Runtime, error)
}
