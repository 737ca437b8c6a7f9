package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
)

func TestSessionLifecycle(t *testing.T) {
	_, h := setupTestServer(t, "")

	created := createTestSession(t, h)
	if created.Token != "" {
		t.Errorf("token issued without a secret: %q", created.Token)
	}
	if created.Report.Session != created.ID || created.Report.ParameterGraphSize != "6" {
		t.Errorf("report = %+v", created.Report)
	}

	w := doRequest(t, h, http.MethodGet, "/sessions", nil, "")
	list := decodeBody[SessionListResponse](t, w)
	if list.Count != 1 || list.Sessions[0] != created.ID {
		t.Errorf("list = %+v", list)
	}

	w = doRequest(t, h, http.MethodGet, "/sessions/"+created.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET session status = %d", w.Code)
	}
	report := decodeBody[editor.Report](t, w)
	if len(report.Network.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(report.Network.Nodes))
	}

	w = doRequest(t, h, http.MethodGet, "/sessions/"+created.ID+"/specification", nil, "")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := w.Body.String(); got != "X0 : ()\nX1 : (X0)\nX2 : (X1)\n" {
		t.Errorf("specification = %q", got)
	}

	w = doRequest(t, h, http.MethodDelete, "/sessions/"+created.ID, nil, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", w.Code)
	}
	w = doRequest(t, h, http.MethodGet, "/sessions/"+created.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("GET deleted session status = %d, want 404", w.Code)
	}
}

func TestSessionIDValidation(t *testing.T) {
	_, h := setupTestServer(t, "")

	w := doRequest(t, h, http.MethodGet, "/sessions/not-a-uuid", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", w.Code)
	}
	w = doRequest(t, h, http.MethodGet, "/sessions/6f1c1b5e-3c55-4d7a-9a53-0a4c7e2b9f10", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", w.Code)
	}
}

func TestNetworkEdits(t *testing.T) {
	_, h := setupTestServer(t, "")
	base := "/sessions/" + createTestSession(t, h).ID

	w := doRequest(t, h, http.MethodPost, base+"/links", LinkRequest{Source: intPtr(0), Target: intPtr(2)}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("add link status = %d: %s", w.Code, w.Body.String())
	}
	report := decodeBody[editor.Report](t, w)
	if report.Revision != 1 || report.Specification[2] != "X2 : (X1)+(X0)" {
		t.Errorf("after add link: revision %d, X2 %q", report.Revision, report.Specification[2])
	}

	w = doRequest(t, h, http.MethodPost, base+"/logic/merge", MergeRequest{
		Input: intPtr(0), Representative: intPtr(1), Target: intPtr(2),
	}, "")
	report = decodeBody[editor.Report](t, w)
	if report.Specification[2] != "X2 : (X1+X0)" {
		t.Errorf("after merge X2 = %q", report.Specification[2])
	}

	w = doRequest(t, h, http.MethodPost, base+"/logic/detach", DetachRequest{Input: intPtr(0), Target: intPtr(2)}, "")
	report = decodeBody[editor.Report](t, w)
	if report.Specification[2] != "X2 : (X1)+(X0)" {
		t.Errorf("after detach X2 = %q", report.Specification[2])
	}

	w = doRequest(t, h, http.MethodPost, base+"/links/X0/X1/toggle", nil, "")
	report = decodeBody[editor.Report](t, w)
	if report.Specification[1] != "X1 : (~X0)" {
		t.Errorf("after toggle X1 = %q", report.Specification[1])
	}

	x, y := 10.0, 20.0
	w = doRequest(t, h, http.MethodPost, base+"/nodes", NodeRequest{X: &x, Y: &y}, "")
	report = decodeBody[editor.Report](t, w)
	node, ok := report.Network.Node(3)
	if !ok || node.Position == nil || node.Position.X != 10 || node.Position.Y != 20 {
		t.Errorf("new node = %+v", node)
	}

	w = doRequest(t, h, http.MethodDelete, base+"/links/0/2", nil, "")
	report = decodeBody[editor.Report](t, w)
	if _, ok := report.Network.Link(0, 2); ok {
		t.Error("link 0 -> 2 still present")
	}

	w = doRequest(t, h, http.MethodDelete, base+"/nodes/1", nil, "")
	report = decodeBody[editor.Report](t, w)
	if report.Revision != 7 {
		t.Errorf("revision = %d, want 7", report.Revision)
	}
	if len(report.Network.Links) != 0 {
		t.Errorf("links = %v, want none after removing X1", report.Network.Links)
	}
}

func TestRejectedEdits(t *testing.T) {
	_, h := setupTestServer(t, "")
	base := "/sessions/" + createTestSession(t, h).ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"toggle missing link", http.MethodPost, base + "/links/2/0/toggle", nil, http.StatusNotFound},
		{"link to missing node", http.MethodPost, base + "/links", LinkRequest{Source: intPtr(0), Target: intPtr(9)}, http.StatusNotFound},
		{"link without target", http.MethodPost, base + "/links", LinkRequest{Source: intPtr(0)}, http.StatusBadRequest},
		{"merge input outside logic", http.MethodPost, base + "/logic/merge", MergeRequest{Input: intPtr(2), Representative: intPtr(0), Target: intPtr(1)}, http.StatusBadRequest},
		{"half position", http.MethodPost, base + "/nodes", `{"x": 1}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, base + "/nodes", `{"z": 1}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, base + "/links", `{`, http.StatusBadRequest},
		{"bad node path", http.MethodDelete, base + "/nodes/abc", nil, http.StatusBadRequest},
		{"negative node path", http.MethodDelete, base + "/nodes/-1", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, tt.method, tt.path, tt.body, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			resp := decodeBody[ErrorResponse](t, w)
			if resp.Code != tt.want || resp.Message == "" {
				t.Errorf("error body = %+v", resp)
			}
		})
	}

	w := doRequest(t, h, http.MethodGet, base, nil, "")
	if report := decodeBody[editor.Report](t, w); report.Revision != 0 {
		t.Errorf("rejected edits bumped revision to %d", report.Revision)
	}
}

func TestRedundantRemovalsSucceed(t *testing.T) {
	_, h := setupTestServer(t, "")
	base := "/sessions/" + createTestSession(t, h).ID

	for _, path := range []string{base + "/links/2/0", base + "/nodes/42"} {
		w := doRequest(t, h, http.MethodDelete, path, nil, "")
		if w.Code != http.StatusOK {
			t.Errorf("DELETE %s status = %d, want 200", path, w.Code)
		}
	}
}

func TestCommandsAndScripts(t *testing.T) {
	_, h := setupTestServer(t, "")
	base := "/sessions/" + createTestSession(t, h).ID

	w := doRequest(t, h, http.MethodPost, base+"/commands", CommandRequest{Command: "select 1"}, "")
	report := decodeBody[editor.Report](t, w)
	if report.Selection.Node == nil || *report.Selection.Node != 1 {
		t.Errorf("selection = %+v", report.Selection)
	}

	w = doRequest(t, h, http.MethodPost, base+"/commands", CommandRequest{Command: "selfloop"}, "")
	report = decodeBody[editor.Report](t, w)
	if report.Specification[1] != "X1 : (X0)+(X1)" {
		t.Errorf("X1 = %q", report.Specification[1])
	}

	w = doRequest(t, h, http.MethodPost, base+"/commands", CommandRequest{Command: "frobnicate"}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown command status = %d", w.Code)
	}

	w = doRequest(t, h, http.MethodPost, base+"/script", ScriptRequest{Script: "# grow\nnode\nlink 3 0\ntoggle 0 3\n"}, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("script status = %d, want 404: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[ErrorResponse](t, w)
	if resp.Line != 4 {
		t.Errorf("line = %d, want 4", resp.Line)
	}

	w = doRequest(t, h, http.MethodGet, base, nil, "")
	report = decodeBody[editor.Report](t, w)
	if report.Revision != 4 {
		t.Errorf("revision = %d, want 4 (two commands and two script lines)", report.Revision)
	}

	w = doRequest(t, h, http.MethodPost, base+"/script", ScriptRequest{Script: "node\nlink 0\n"}, "")
	resp = decodeBody[ErrorResponse](t, w)
	if w.Code != http.StatusBadRequest || resp.Line != 2 {
		t.Errorf("parse error = %d %+v", w.Code, resp)
	}
}
