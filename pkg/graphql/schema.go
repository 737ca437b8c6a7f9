package graphql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/validation"
)

// ErrUnauthorized is returned when a mutation names a session its token does
// not belong to.
var ErrUnauthorized = errors.New("unauthorized")

// Authorizer issues and checks session tokens.
type Authorizer interface {
	GenerateToken(sessionID string) (string, error)
	Authorize(token, sessionID string) error
}

// Config wires a schema to the running sessions.
type Config struct {
	Sessions *editor.Manager
	// Tokens is optional; when nil, mutations are not authorized.
	Tokens Authorizer
}

type tokenKey struct{}

// WithToken attaches a bearer token to ctx for the mutation resolvers.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token attached by WithToken.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// NewSchema builds the query and mutation schema over cfg.Sessions.
func NewSchema(cfg Config) (graphql.Schema, error) {
	if cfg.Sessions == nil {
		return graphql.Schema{}, errors.New("graphql: session manager is required")
	}
	r := &resolver{sessions: cfg.Sessions, tokens: cfg.Tokens}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"session": &graphql.Field{
				Type: reportType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.session,
			},
			"sessions": &graphql.Field{
				Type: graphql.NewList(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.sessions.List(), nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: r.mutationType(),
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

type resolver struct {
	sessions *editor.Manager
	tokens   Authorizer
}

func (r *resolver) session(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return reportValue(s.Report()), nil
}

func (r *resolver) lookup(id string) (*editor.Session, error) {
	if err := validation.ValidateSessionID(id); err != nil {
		return nil, err
	}
	return r.sessions.Get(id)
}

// owned resolves the session named by the "session" argument and checks the
// caller's token against it.
func (r *resolver) owned(p graphql.ResolveParams) (*editor.Session, error) {
	id, _ := p.Args["session"].(string)
	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if r.tokens != nil {
		if err := r.tokens.Authorize(TokenFromContext(p.Context), id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	return s, nil
}

// execute runs one command against the owned session.
func (r *resolver) execute(build func(graphql.ResolveParams) (editor.Command, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		s, err := r.owned(p)
		if err != nil {
			return nil, err
		}
		cmd, err := build(p)
		if err != nil {
			return nil, err
		}
		report, err := s.Execute(contextOf(p), cmd)
		if err != nil {
			return nil, err
		}
		return reportValue(report), nil
	}
}

func (r *resolver) createSession(p graphql.ResolveParams) (any, error) {
	s := r.sessions.Create()
	out := map[string]any{
		"id":     s.ID(),
		"report": reportValue(s.Report()),
	}
	if r.tokens != nil {
		token, err := r.tokens.GenerateToken(s.ID())
		if err != nil {
			_ = r.sessions.Delete(s.ID())
			return nil, err
		}
		out["token"] = token
	}
	return out, nil
}

func (r *resolver) closeSession(p graphql.ResolveParams) (any, error) {
	s, err := r.owned(p)
	if err != nil {
		return nil, err
	}
	if err := r.sessions.Delete(s.ID()); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *resolver) runScript(p graphql.ResolveParams) (any, error) {
	s, err := r.owned(p)
	if err != nil {
		return nil, err
	}
	script, _ := p.Args["script"].(string)
	if err := validation.ValidateScriptRequest(&validation.ScriptRequest{Script: script}); err != nil {
		return nil, err
	}
	stmts, err := editor.ParseScript(strings.NewReader(script))
	if err != nil {
		return nil, err
	}
	report, err := editor.RunScript(contextOf(p), s, stmts)
	if err != nil {
		return nil, err
	}
	return reportValue(report), nil
}

func contextOf(p graphql.ResolveParams) context.Context {
	if p.Context == nil {
		return context.Background()
	}
	return p.Context
}
