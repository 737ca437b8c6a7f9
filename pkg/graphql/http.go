package graphql

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
)

// Response is the JSON body written for every operation.
type Response struct {
	Data   any     `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Error is one GraphQL error.
type Error struct {
	Message string `json:"message"`
}

// Handler serves GraphQL over HTTP POST.
type Handler struct {
	schema   graphql.Schema
	maxDepth int
	logger   logging.Logger
}

// NewHandler creates a handler. maxDepth <= 0 selects DefaultMaxDepth.
func NewHandler(schema graphql.Schema, maxDepth int, logger logging.Logger) *Handler {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Handler{schema: schema, maxDepth: maxDepth, logger: logger}
}

// ServeHTTP decodes the operation, hands the bearer token to the resolvers
// and writes the result. GraphQL errors are reported with status 200.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(Response{Errors: []Error{{Message: "method not allowed"}}})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(Response{Errors: []Error{{Message: "invalid request body"}}})
		return
	}

	ctx := r.Context()
	if token := BearerToken(r); token != "" {
		ctx = WithToken(ctx, token)
	}
	result := Execute(ctx, h.schema, req, h.maxDepth)

	response := Response{Data: result.Data}
	if result.HasErrors() {
		response.Errors = make([]Error, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = Error{Message: err.Message}
		}
		h.logger.Debug("graphql errors",
			logging.String("operation", req.OperationName),
			logging.String("first_error", result.Errors[0].Message),
			logging.Count(len(result.Errors)))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Warn("failed to encode graphql response", logging.Error(err))
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
