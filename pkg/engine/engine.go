// Package engine evaluates construction scripts written in a small Lisp.
// It wraps zygomys in a sandboxed environment whose builtins build solids
// in a fresh workspace.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/printparts/pkg/graph"
	"github.com/chazu/printparts/pkg/kernel"
	"github.com/chazu/printparts/pkg/workspace"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string

	// Err is the workspace error behind a failed construction step, if
	// any. It carries the error kind for errors.Is.
	Err error
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func (e EvalError) Unwrap() error { return e.Err }

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Workspace *workspace.Workspace
	Errors    []EvalError
	Warnings  []EvalWarning
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment and a fresh
// workspace for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	kernel  kernel.Kernel
	timeout time.Duration
	logger  *slog.Logger
	strict  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger handed to each evaluation's workspace.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStrictNames makes reusing a solid name an evaluation error.
func WithStrictNames(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

// NewEngine creates a new Engine building geometry through k.
func NewEngine(k kernel.Kernel, opts ...Option) *Engine {
	e := &Engine{
		kernel:  k,
		timeout: EvalTimeout,
		logger:  workspace.Logger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate runs source and returns the workspace it built.
//
// Return semantics:
//   - On success: returns workspace + nil errors + nil error
//   - On parse/eval failure: returns nil workspace + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*workspace.Workspace, []EvalError, error) {
	res, err := e.EvaluateParams("script", source, nil)
	if err != nil {
		return nil, nil, err
	}
	return res.Workspace, res.Errors, nil
}

// EvaluateParams runs source in a workspace with the given name. Values in
// params override the defaults scripts pass to `param`; overrides no
// script reads are reported as warnings.
func (e *Engine) EvaluateParams(name, source string, params map[string]float64) (EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, err := e.evaluate(name, source, params)
		ch <- evalResult{result: res, err: err}
	}()

	return waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(name, source string, params map[string]float64) (EvalResult, error) {
	ws := workspace.New(name, e.kernel,
		workspace.WithLogger(e.logger),
		workspace.WithStrict(e.strict),
	)

	// Empty source is a valid program that builds nothing.
	if strings.TrimSpace(source) == "" {
		return EvalResult{Workspace: ws, Warnings: unusedParams(params, nil)}, nil
	}

	// Create a fresh sandboxed zygomys environment.
	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	ss := &session{ws: ws, params: params, used: make(map[string]bool)}
	registerBuiltins(env, ss)

	// Load and compile the source string into bytecode.
	if err := env.LoadString(preprocessSource(source)); err != nil {
		return EvalResult{Errors: parseZygomysError(err)}, nil
	}

	// Execute the compiled bytecode.
	if _, err := env.Run(); err != nil {
		errs := parseZygomysError(err)
		errs[0].Err = ss.failed
		return EvalResult{Errors: errs}, nil
	}

	res := EvalResult{Workspace: ws, Warnings: unusedParams(params, ss.used)}
	for _, c := range ws.Collisions() {
		res.Warnings = append(res.Warnings, EvalWarning{
			Message: fmt.Sprintf("solid name %q reused; the later solid wins", c.Name),
			NodeID:  c.Current,
		})
	}
	return res, nil
}

func unusedParams(params map[string]float64, used map[string]bool) []EvalWarning {
	var names []string
	for k := range params {
		if !used[k] {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	var out []EvalWarning
	for _, k := range names {
		out = append(out, EvalWarning{Message: fmt.Sprintf("parameter %q is never read", k)})
	}
	return out
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Message: strings.TrimSpace(msg),
	}}
}
