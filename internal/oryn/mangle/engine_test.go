package mangle

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if engine == nil {
		t.Fatal("NewEngine() returned nil engine")
	}
}

func TestLoadSchemaStringAndQuery(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	schema := `
Decl element(Id, Type) bound [/number, /string].
Decl parent(Child, Parent) bound [/number, /number].
Decl is_password(Id) bound [/number].

Decl login_form(Form) bound [/number].
login_form(Form) :- element(Form, /form), parent(Pw, Form), is_password(Pw).
`
	if err := engine.LoadSchemaString(schema); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}

	facts := []Fact{
		{Predicate: "element", Args: []interface{}{int64(1), "/form"}},
		{Predicate: "parent", Args: []interface{}{int64(2), int64(1)}},
		{Predicate: "is_password", Args: []interface{}{int64(2)}},
	}
	if err := engine.AddFacts(facts); err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}

	got, err := engine.Query(context.Background(), "login_form(Form)")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	want := []map[string]interface{}{{"Form": int64(1)}}
	if diff := cmp.Diff(want, got.Bindings); diff != "" {
		t.Errorf("Query() bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSchemaStringRejectsMalformedSchema(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.LoadSchemaString("not a valid mangle fragment {{{"); err == nil {
		t.Error("LoadSchemaString() error = nil, want error for malformed schema")
	}
}

func TestClearResetsFacts(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.LoadSchemaString(`Decl seen(Id) bound [/number].`); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	if err := engine.AddFact("seen", int64(1)); err != nil {
		t.Fatalf("AddFact() error = %v", err)
	}

	engine.Clear()

	facts, err := engine.GetFacts("seen")
	if err != nil {
		t.Fatalf("GetFacts() error = %v", err)
	}
	if len(facts) != 0 {
		t.Errorf("GetFacts() after Clear() = %v, want empty", facts)
	}
}

func TestAddFactsRequiresDeclaredPredicate(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.LoadSchemaString(`Decl seen(Id) bound [/number].`); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	if err := engine.AddFact("unknown_predicate", int64(1)); err == nil {
		t.Error("AddFact() error = nil, want error for undeclared predicate")
	}
}
