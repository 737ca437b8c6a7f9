package graphql

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netbuilder/pkg/auth"
	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
)

func newTestSchema(t *testing.T, tokens Authorizer) (graphql.Schema, *editor.Manager) {
	t.Helper()
	sessions := editor.NewManager(editor.Options{Seed: true, VerifyInvariants: true})
	t.Cleanup(sessions.Close)

	schema, err := NewSchema(Config{Sessions: sessions, Tokens: tokens})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return schema, sessions
}

func run(t *testing.T, ctx context.Context, schema graphql.Schema, query string, vars map[string]any) map[string]any {
	t.Helper()
	result := Execute(ctx, schema, Request{Query: query, Variables: vars}, DefaultMaxDepth)
	if result.HasErrors() {
		t.Fatalf("query failed: %v", result.Errors)
	}
	data, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data %T", result.Data)
	}
	return data
}

func createSession(t *testing.T, schema graphql.Schema) (string, string) {
	t.Helper()
	data := run(t, context.Background(), schema, `mutation { createSession { id token report { revision } } }`, nil)
	created := data["createSession"].(map[string]any)
	token, _ := created["token"].(string)
	return created["id"].(string), token
}

func TestNewSchemaRequiresSessions(t *testing.T) {
	if _, err := NewSchema(Config{}); err == nil {
		t.Fatal("expected an error without a session manager")
	}
}

func TestHealthQuery(t *testing.T) {
	schema, _ := newTestSchema(t, nil)

	data := run(t, context.Background(), schema, `{ health }`, nil)
	if data["health"] != "ok" {
		t.Errorf("health = %v, want ok", data["health"])
	}
}

func TestSessionQuery(t *testing.T) {
	schema, sessions := newTestSchema(t, nil)
	s := sessions.Create()

	query := `query($id: ID!) {
		session(id: $id) {
			session
			revision
			specification
			specificationText
			parameterGraphSize
			reorderings
			allOrderings
			supported
			figures { label display }
			components { node key role factor classified }
			network { nodes { id name } links { source target sign label } logic { node name groups { inputs { source sign } } } }
		}
	}`
	data := run(t, context.Background(), schema, query, map[string]any{"id": s.ID()})
	report := data["session"].(map[string]any)

	if report["session"] != s.ID() {
		t.Errorf("session = %v, want %s", report["session"], s.ID())
	}
	if report["parameterGraphSize"] != "6" || report["reorderings"] != "1" || report["allOrderings"] != "6" {
		t.Errorf("figures = %v/%v/%v, want 6/1/6", report["parameterGraphSize"], report["reorderings"], report["allOrderings"])
	}
	if report["specificationText"] != "X0 : ()\nX1 : (X0)\nX2 : (X1)\n" {
		t.Errorf("specificationText = %q", report["specificationText"])
	}

	net := report["network"].(map[string]any)
	if n := len(net["nodes"].([]any)); n != 3 {
		t.Errorf("nodes = %d, want 3", n)
	}
	links := net["links"].([]any)
	if len(links) != 2 {
		t.Fatalf("links = %d, want 2", len(links))
	}
	if label := links[0].(map[string]any)["label"]; label != "X0 -> X1" {
		t.Errorf("link label = %v", label)
	}
	logic := net["logic"].([]any)
	if len(logic) != 3 || logic[1].(map[string]any)["name"] != "X1" {
		t.Errorf("logic = %v", logic)
	}

	components := report["components"].([]any)
	if len(components) != 3 {
		t.Fatalf("components = %d, want 3", len(components))
	}
	if role := components[0].(map[string]any)["role"]; role != "source" {
		t.Errorf("X0 role = %v, want source", role)
	}
}

func TestSessionQueryUnknown(t *testing.T) {
	schema, _ := newTestSchema(t, nil)

	for _, id := range []string{"not-a-uuid", "6f1c1b5e-3c55-4d7a-9a53-0a4c7e2b9f10"} {
		result := Execute(context.Background(), schema, Request{
			Query:     `query($id: ID!) { session(id: $id) { revision } }`,
			Variables: map[string]any{"id": id},
		}, DefaultMaxDepth)
		if !result.HasErrors() {
			t.Errorf("session(%q) should fail", id)
		}
	}
}

func TestEditMutations(t *testing.T) {
	schema, sessions := newTestSchema(t, nil)
	id, token := createSession(t, schema)
	if token != "" {
		t.Errorf("token = %q, want none without an authorizer", token)
	}

	ctx := context.Background()
	vars := map[string]any{"s": id}

	data := run(t, ctx, schema, `mutation($s: ID!) { addLink(session: $s, source: 0, target: 2) { revision specification } }`, vars)
	report := data["addLink"].(map[string]any)
	if report["revision"] != 1 {
		t.Errorf("revision = %v, want 1", report["revision"])
	}
	if spec := report["specification"].([]any); spec[2] != "X2 : (X1)+(X0)" {
		t.Errorf("X2 = %v", spec[2])
	}

	data = run(t, ctx, schema, `mutation($s: ID!) { mergeLogicInput(session: $s, input: 0, representative: 1, target: 2) { specification } }`, vars)
	if spec := data["mergeLogicInput"].(map[string]any)["specification"].([]any); spec[2] != "X2 : (X1+X0)" {
		t.Errorf("after merge X2 = %v", spec[2])
	}

	data = run(t, ctx, schema, `mutation($s: ID!) { detachLogicInput(session: $s, input: 0, target: 2) { specification } }`, vars)
	if spec := data["detachLogicInput"].(map[string]any)["specification"].([]any); spec[2] != "X2 : (X1)+(X0)" {
		t.Errorf("after detach X2 = %v", spec[2])
	}

	data = run(t, ctx, schema, `mutation($s: ID!) { toggleLinkSign(session: $s, source: 0, target: 1) { specification } }`, vars)
	if spec := data["toggleLinkSign"].(map[string]any)["specification"].([]any); spec[1] != "X1 : (~X0)" {
		t.Errorf("after toggle X1 = %v", spec[1])
	}

	data = run(t, ctx, schema, `mutation($s: ID!) { addNode(session: $s, x: 1.5, y: -2) { network { nodes { id x y } } } }`, vars)
	nodes := data["addNode"].(map[string]any)["network"].(map[string]any)["nodes"].([]any)
	last := nodes[len(nodes)-1].(map[string]any)
	if last["id"] != 3 || last["x"] != 1.5 || last["y"] != -2.0 {
		t.Errorf("new node = %v", last)
	}

	run(t, ctx, schema, `mutation($s: ID!) { removeLink(session: $s, source: 0, target: 2) { revision } }`, vars)
	data = run(t, ctx, schema, `mutation($s: ID!) { removeNode(session: $s, node: 3) { revision network { nodes { id } } } }`, vars)
	report = data["removeNode"].(map[string]any)
	if report["revision"] != 7 {
		t.Errorf("revision = %v, want 7", report["revision"])
	}

	s, err := sessions.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := len(s.Snapshot().Nodes); got != 3 {
		t.Errorf("nodes = %d, want 3", got)
	}
}

func TestRejectedMutationsReportErrors(t *testing.T) {
	schema, _ := newTestSchema(t, nil)
	id, _ := createSession(t, schema)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"missing link", `mutation($s: ID!) { toggleLinkSign(session: $s, source: 2, target: 0) { revision } }`, "link"},
		{"negative id", `mutation($s: ID!) { removeNode(session: $s, node: -1) { revision } }`, "out of range"},
		{"half position", `mutation($s: ID!) { addNode(session: $s, x: 1) { revision } }`, "together"},
		{"bad command", `mutation($s: ID!) { execute(session: $s, command: "frobnicate") { revision } }`, "unknown command"},
		{"script line", `mutation($s: ID!) { runScript(session: $s, script: "node\nlink 0") { revision } }`, "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Execute(context.Background(), schema, Request{Query: tt.query, Variables: map[string]any{"s": id}}, DefaultMaxDepth)
			if !result.HasErrors() {
				t.Fatal("expected an error")
			}
			if msg := result.Errors[0].Message; !strings.Contains(msg, tt.want) {
				t.Errorf("error %q does not mention %q", msg, tt.want)
			}
		})
	}
}

func TestExecuteAndRunScript(t *testing.T) {
	schema, _ := newTestSchema(t, nil)
	id, _ := createSession(t, schema)
	ctx := context.Background()
	vars := map[string]any{"s": id}

	data := run(t, ctx, schema, `mutation($s: ID!) { execute(session: $s, command: "select 1") { selection { node inspected } } }`, vars)
	sel := data["execute"].(map[string]any)["selection"].(map[string]any)
	if sel["node"] != 1 || sel["inspected"] != 1 {
		t.Errorf("selection = %v", sel)
	}

	vars["script"] = "# grow\nlink 0 2\nselect 2\npick 0\npick 1\n"
	data = run(t, ctx, schema, `mutation($s: ID!, $script: String!) { runScript(session: $s, script: $script) { revision specification } }`, vars)
	report := data["runScript"].(map[string]any)
	if report["revision"] != 5 {
		t.Errorf("revision = %v, want 5", report["revision"])
	}
	if spec := report["specification"].([]any); spec[2] != "X2 : (X1+X0)" {
		t.Errorf("X2 = %v", spec[2])
	}
}

func TestSessionsAndClose(t *testing.T) {
	schema, sessions := newTestSchema(t, nil)
	a, _ := createSession(t, schema)
	b, _ := createSession(t, schema)

	data := run(t, context.Background(), schema, `{ sessions }`, nil)
	ids := data["sessions"].([]any)
	if len(ids) != 2 {
		t.Fatalf("sessions = %v, want 2", ids)
	}
	seen := map[any]bool{ids[0]: true, ids[1]: true}
	if !seen[a] || !seen[b] {
		t.Errorf("sessions = %v, want %s and %s", ids, a, b)
	}

	data = run(t, context.Background(), schema, `mutation($s: ID!) { closeSession(session: $s) }`, map[string]any{"s": a})
	if data["closeSession"] != true {
		t.Errorf("closeSession = %v", data["closeSession"])
	}
	if sessions.Len() != 1 {
		t.Errorf("open sessions = %d, want 1", sessions.Len())
	}
}

func TestMutationsRequireSessionToken(t *testing.T) {
	tokens, err := auth.NewTokenManager("graphql-test-secret-key", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	schema, _ := newTestSchema(t, tokens)

	id, token := createSession(t, schema)
	if token == "" {
		t.Fatal("createSession returned no token")
	}
	_, otherToken := createSession(t, schema)

	mutation := `mutation($s: ID!) { addNode(session: $s) { revision } }`
	vars := map[string]any{"s": id}

	if result := Execute(context.Background(), schema, Request{Query: mutation, Variables: vars}, DefaultMaxDepth); !result.HasErrors() {
		t.Error("mutation without a token should fail")
	}
	if result := Execute(WithToken(context.Background(), otherToken), schema, Request{Query: mutation, Variables: vars}, DefaultMaxDepth); !result.HasErrors() {
		t.Error("mutation with another session's token should fail")
	}

	data := run(t, WithToken(context.Background(), token), schema, mutation, vars)
	if rev := data["addNode"].(map[string]any)["revision"]; rev != 1 {
		t.Errorf("revision = %v, want 1", rev)
	}

	// Reads stay open.
	run(t, context.Background(), schema, `query($s: ID!) { session(id: $s) { revision } }`, map[string]any{"s": id})
}
