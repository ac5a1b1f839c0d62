// Package mangle wraps the Google Mangle Datalog engine for in-process
// semantic pattern detection over a page scan: login forms, search boxes,
// modals, and cookie banners are recognized by evaluating small rule sets
// against facts pushed from a ScanResult rather than by hardcoded heuristics.
package mangle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"
	"github.com/google/mangle/unionfind"
)

// Config holds Mangle engine configuration.
type Config struct {
	FactLimit    int
	QueryTimeout int // seconds
	AutoEval     bool
}

func DefaultConfig() Config {
	return Config{FactLimit: 20000, QueryTimeout: 5, AutoEval: true}
}

// Engine wraps the Mangle engine with a typed-fact insertion API.
type Engine struct {
	config Config

	mu              sync.RWMutex
	store           factstore.ConcurrentFactStore
	baseStore       factstore.FactStoreWithRemove
	programInfo     *analysis.ProgramInfo
	queryContext    *mengine.QueryContext
	predicateIndex  map[string]ast.PredicateSym
	schemaFragments []parse.SourceUnit
	factCount       int
	factLimitWarned bool
	autoEval        bool
}

// Fact is a single predicate application to push into the store.
type Fact struct {
	Predicate string
	Args      []interface{}
}

func (f Fact) String() string {
	var args []string
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case string:
			if strings.HasPrefix(v, "/") {
				args = append(args, v)
			} else {
				args = append(args, fmt.Sprintf("%q", v))
			}
		case int:
			args = append(args, fmt.Sprintf("%d", v))
		case float64:
			args = append(args, fmt.Sprintf("%f", v))
		default:
			args = append(args, fmt.Sprintf("%v", v))
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

type QueryResult struct {
	Bindings []map[string]interface{}
	Duration time.Duration
}

type Stats struct {
	TotalFacts      int
	PredicateCounts map[string]int
}

func NewEngine(cfg Config) (*Engine, error) {
	baseStore := factstore.NewSimpleInMemoryStore()
	return &Engine{
		config:         cfg,
		baseStore:      baseStore,
		store:          factstore.NewConcurrentFactStore(baseStore),
		predicateIndex: make(map[string]ast.PredicateSym),
		autoEval:       cfg.AutoEval,
	}, nil
}

// LoadSchemaString loads and compiles a Mangle schema fragment (Decls plus
// ":-" rules) and merges it with any previously loaded fragments.
func (e *Engine) LoadSchemaString(schema string) error {
	unit, err := parse.Unit(bytes.NewReader([]byte(schema)))
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.schemaFragments = append(e.schemaFragments, unit)
	return e.rebuildProgramLocked()
}

func (e *Engine) rebuildProgramLocked() error {
	var clauses []ast.Clause
	var decls []ast.Decl
	for _, fragment := range e.schemaFragments {
		clauses = append(clauses, fragment.Clauses...)
		decls = append(decls, fragment.Decls...)
	}

	unit := parse.SourceUnit{Clauses: clauses, Decls: decls}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return err
	}

	e.programInfo = programInfo
	e.predicateIndex = make(map[string]ast.PredicateSym, len(programInfo.Decls))

	predToDecl := make(map[ast.PredicateSym]*ast.Decl, len(programInfo.Decls))
	for sym, decl := range programInfo.Decls {
		e.predicateIndex[sym.Symbol] = sym
		predToDecl[sym] = decl
	}

	predToRules := make(map[ast.PredicateSym][]ast.Clause)
	for _, clause := range programInfo.Rules {
		predToRules[clause.Head.Predicate] = append(predToRules[clause.Head.Predicate], clause)
	}

	e.queryContext = &mengine.QueryContext{
		PredToRules: predToRules,
		PredToDecl:  predToDecl,
		Store:       e.store,
	}
	return nil
}

func (e *Engine) AddFact(predicate string, args ...interface{}) error {
	return e.AddFacts([]Fact{{Predicate: predicate, Args: args}})
}

func (e *Engine) AddFacts(facts []Fact) error {
	if len(facts) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.programInfo == nil {
		return fmt.Errorf("no schemas loaded; call LoadSchemaString first")
	}
	for _, fact := range facts {
		if err := e.insertFactLocked(fact); err != nil {
			return err
		}
	}
	if e.autoEval {
		_, err := mengine.EvalProgramWithStats(e.programInfo, e.store)
		return err
	}
	return nil
}

func (e *Engine) insertFactLocked(fact Fact) error {
	if e.config.FactLimit > 0 && e.factCount >= e.config.FactLimit {
		return fmt.Errorf("fact limit exceeded: %d", e.config.FactLimit)
	}
	atom, err := e.factToAtomLocked(fact)
	if err != nil {
		return err
	}
	if e.store.Add(atom) {
		e.factCount++
		e.maybeWarnFactLimit()
	}
	return nil
}

func (e *Engine) maybeWarnFactLimit() {
	if e.config.FactLimit == 0 || e.factLimitWarned {
		return
	}
	if float64(e.factCount)/float64(e.config.FactLimit) >= 0.85 {
		fmt.Fprintf(os.Stderr, "warning: pattern fact store is %.1f%% of capacity (%d / %d)\n",
			100*float64(e.factCount)/float64(e.config.FactLimit), e.factCount, e.config.FactLimit)
		e.factLimitWarned = true
	}
}

func (e *Engine) factToAtomLocked(fact Fact) (ast.Atom, error) {
	sym, ok := e.predicateIndex[fact.Predicate]
	if !ok {
		return ast.Atom{}, fmt.Errorf("predicate %s is not declared in schema", fact.Predicate)
	}
	if len(fact.Args) != sym.Arity {
		return ast.Atom{}, fmt.Errorf("predicate %s expects %d args, got %d", fact.Predicate, sym.Arity, len(fact.Args))
	}
	args := make([]ast.BaseTerm, len(fact.Args))
	for i, raw := range fact.Args {
		term, err := convertValueToTerm(raw)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("predicate %s arg %d: %w", fact.Predicate, i, err)
		}
		args[i] = term
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

func convertValueToTerm(value interface{}) (ast.BaseTerm, error) {
	switch v := value.(type) {
	case ast.BaseTerm:
		return v, nil
	case string:
		if strings.HasPrefix(v, "/") {
			return ast.Name(v)
		}
		return ast.String(v), nil
	case int:
		return ast.Number(int64(v)), nil
	case int64:
		return ast.Number(v), nil
	case float64:
		return ast.Float64(v), nil
	case bool:
		if v {
			return ast.TrueConstant, nil
		}
		return ast.FalseConstant, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("unsupported fact argument type %T", v)
		}
		return ast.String(string(encoded)), nil
	}
}

// Query evaluates a Mangle query expression (e.g. "is_login_form(X)").
func (e *Engine) Query(ctx context.Context, query string) (*QueryResult, error) {
	shape, err := parseQueryShape(query)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	qc := e.queryContext
	if qc == nil {
		e.mu.RUnlock()
		return nil, fmt.Errorf("no schemas loaded")
	}
	decl, ok := qc.PredToDecl[shape.atom.Predicate]
	if !ok || len(decl.Modes()) == 0 {
		e.mu.RUnlock()
		return nil, fmt.Errorf("predicate %s is not queryable", shape.atom.Predicate.Symbol)
	}
	mode := decl.Modes()[0]
	e.mu.RUnlock()

	timeout := time.Duration(e.config.QueryTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	var results []map[string]interface{}
	err = qc.EvalQuery(shape.atom, mode, unionfind.New(), func(fact ast.Atom) error {
		row := make(map[string]interface{}, len(shape.variables))
		for _, binding := range shape.variables {
			if binding.Index < len(fact.Args) {
				row[binding.Name] = convertTermToValue(fact.Args[binding.Index])
			}
		}
		results = append(results, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &QueryResult{Bindings: results, Duration: time.Since(start)}, nil
}

// GetFacts retrieves all facts currently stored for a predicate.
func (e *Engine) GetFacts(predicate string) ([]Fact, error) {
	e.mu.RLock()
	sym, ok := e.predicateIndex[predicate]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("predicate %s is not declared", predicate)
	}

	var results []Fact
	err := e.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		args := make([]interface{}, len(atom.Args))
		for i, arg := range atom.Args {
			args[i] = convertTermToValue(arg)
		}
		results = append(results, Fact{Predicate: predicate, Args: args})
		return nil
	})
	return results, err
}

// EvaluateRule is sugar for GetFacts against a derived (rule-headed)
// predicate, discarding the error for callers that only care about matches.
func (e *Engine) EvaluateRule(predicate string) []Fact {
	facts, _ := e.GetFacts(predicate)
	return facts
}

func (e *Engine) GetStats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	counts := make(map[string]int)
	for _, sym := range e.store.ListPredicates() {
		n := 0
		_ = e.store.GetFacts(ast.NewQuery(sym), func(ast.Atom) error { n++; return nil })
		counts[sym.Symbol] = n
	}
	return Stats{TotalFacts: e.store.EstimateFactCount(), PredicateCounts: counts}
}

// Clear wipes all facts, keeping the loaded schema. The resolver calls this
// at the start of each pattern-detection pass over a fresh scan.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.baseStore = factstore.NewSimpleInMemoryStore()
	e.store = factstore.NewConcurrentFactStore(e.baseStore)
	e.factCount = 0
	if e.queryContext != nil {
		qc := *e.queryContext
		qc.Store = e.store
		e.queryContext = &qc
	}
}

func (e *Engine) Close() error { return nil }

type queryVariable struct {
	Name  string
	Index int
}

type queryShape struct {
	atom      ast.Atom
	variables []queryVariable
}

func parseQueryShape(query string) (*queryShape, error) {
	clean := strings.TrimSpace(query)
	if clean == "" {
		return nil, fmt.Errorf("empty query")
	}
	clean = strings.TrimPrefix(clean, "?")
	clean = strings.TrimSpace(strings.TrimSuffix(clean, "."))

	atom, err := parse.Atom(clean)
	if err != nil {
		atom, err = parse.Atom(clean + ".")
		if err != nil {
			return nil, fmt.Errorf("parse query %q: %w", query, err)
		}
	}

	var variables []queryVariable
	for idx, arg := range atom.Args {
		if v, ok := arg.(ast.Variable); ok {
			variables = append(variables, queryVariable{Name: v.Symbol, Index: idx})
		}
	}
	return &queryShape{atom: atom, variables: variables}, nil
}

func convertTermToValue(term ast.BaseTerm) interface{} {
	switch v := term.(type) {
	case ast.Constant:
		switch v.Type {
		case ast.StringType, ast.NameType, ast.BytesType:
			return v.Symbol
		case ast.NumberType:
			return v.NumValue
		case ast.Float64Type:
			return math.Float64frombits(uint64(v.NumValue))
		default:
			return v.String()
		}
	case ast.Variable:
		return v.Symbol
	default:
		return fmt.Sprintf("%v", term)
	}
}
