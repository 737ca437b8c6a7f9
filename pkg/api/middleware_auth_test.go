package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/dd0wney/cluso-netbuilder/pkg/auth"
)

func TestSessionTokens(t *testing.T) {
	_, h := setupTestServer(t, testSecret)

	mine := createTestSession(t, h)
	other := createTestSession(t, h)
	if mine.Token == "" || other.Token == "" {
		t.Fatal("sessions created without tokens")
	}

	path := "/sessions/" + mine.ID + "/nodes"
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not.a.jwt", http.StatusUnauthorized},
		{"other session's token", other.Token, http.StatusForbidden},
		{"own token", mine.Token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodPost, path, nil, tt.token)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	// Reads stay open.
	w := doRequest(t, h, http.MethodGet, "/sessions/"+mine.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("GET without token status = %d", w.Code)
	}

	w = doRequest(t, h, http.MethodDelete, "/sessions/"+mine.ID, nil, other.Token)
	if w.Code != http.StatusForbidden {
		t.Errorf("DELETE with foreign token status = %d", w.Code)
	}
	w = doRequest(t, h, http.MethodDelete, "/sessions/"+mine.ID, nil, mine.Token)
	if w.Code != http.StatusNoContent {
		t.Errorf("DELETE with own token status = %d", w.Code)
	}
}

func TestExpiredSessionToken(t *testing.T) {
	server, h := setupTestServer(t, testSecret)
	created := createTestSession(t, h)

	expired, err := auth.NewTokenManager(testSecret, -time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	token, err := expired.GenerateToken(created.ID)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	w := doRequest(t, h, http.MethodPost, "/sessions/"+created.ID+"/nodes", nil, token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	w = doRequest(t, h, http.MethodGet, "/info", nil, "")
	if info := decodeBody[InfoResponse](t, w); !info.Tokens || info.Sessions != server.sessions.Len() {
		t.Errorf("info = %+v", info)
	}
}

type graphqlCreateResponse struct {
	Data struct {
		CreateSession struct {
			ID     string `json:"id"`
			Token  string `json:"token"`
			Report struct {
				ParameterGraphSize string `json:"parameterGraphSize"`
			} `json:"report"`
		} `json:"createSession"`
	} `json:"data"`
}

func TestGraphQLRoute(t *testing.T) {
	_, h := setupTestServer(t, testSecret)

	w := doRequest(t, h, http.MethodPost, "/graphql", map[string]any{
		"query": `mutation { createSession { id token report { parameterGraphSize } } }`,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	resp := decodeBody[graphqlCreateResponse](t, w)

	created := resp.Data.CreateSession
	if created.ID == "" || created.Token == "" || created.Report.ParameterGraphSize != "6" {
		t.Fatalf("createSession = %+v", created)
	}

	// The GraphQL token works on the REST routes too.
	w = doRequest(t, h, http.MethodPost, "/sessions/"+created.ID+"/nodes", nil, created.Token)
	if w.Code != http.StatusOK {
		t.Errorf("REST with GraphQL token status = %d", w.Code)
	}
}
