package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// aliases maps common short names onto the catalog's canonical language
// names before lookup.
var aliases = map[string]string{
	"js":   "javascript",
	"node": "javascript",
	"py":   "python",
	"cpp":  "c++",
}

// Normalize lowercases and trims a language name and resolves it
// through the alias table. Unknown names pass through unchanged.
func Normalize(language string) string {
	key := strings.ToLower(strings.TrimSpace(language))
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// Gateway resolves a logical language to a concrete runtime version and
// submits jobs to the configured backend.
type Gateway struct {
	catalog        Catalog
	backend        Backend
	defaultTimeout time.Duration
	maxTimeout     time.Duration
}

func NewGateway(catalog Catalog, backend Backend, defaultTimeout, maxTimeout time.Duration) *Gateway {
	return &Gateway{
		catalog:        catalog,
		backend:        backend,
		defaultTimeout: defaultTimeout,
		maxTimeout:     maxTimeout,
	}
}

// ResolveVersion picks the runtime for a language. The catalog lists
// versions oldest-first, so the last matching entry is taken as latest.
func (g *Gateway) ResolveVersion(ctx context.Context, language string) (Runtime, error) {
	lang := Normalize(language)

	runtimes, err := g.catalog.Runtimes(ctx, false)
	if err != nil {
		return Runtime{}, err
	}

	matches := lo.Filter(runtimes, func(r Runtime, _ int) bool {
		return r.Language == lang
	})
	if len(matches) == 0 {
		return Runtime{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	latest := matches[len(matches)-1]
	return Runtime{Language: lang, Version: latest.Version}, nil
}

// Run resolves the request's language, derives a deadline from its
// timeoutMs, and executes. The deadline cancels the upstream call.
func (g *Gateway) Run(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	rt, err := g.ResolveVersion(ctx, req.Language)
	if err != nil {
		return nil, err
	}

	timeout := g.defaultTimeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	if timeout > g.maxTimeout {
		timeout = g.maxTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := g.backend.Execute(ctx, Job{
		Language: rt.Language,
		Version:  rt.Version,
		Code:     req.Code,
		Stdin:    req.Stdin,
	})
	if err != nil {
		return nil, err
	}

	return &ExecuteResult{
		Language: rt.Language,
		Version:  rt.Version,
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
		Output:   out.Output,
		ExitCode: out.ExitCode,
		Signal:   out.Signal,
		Time:     out.Time,
		Memory:   out.Memory,
	}, nil
}
