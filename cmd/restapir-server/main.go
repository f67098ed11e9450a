// Command restapir-server wires the query dispatcher and authentication
// facade behind a gin HTTP boundary: POST /token for the password grant,
// GET and POST /graphql for the compact query language, and /file/:entity
// for direct, schema-free model CRUD.
package main

import (
	"context"
	log "log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mauritsl/restapir"
	"github.com/mauritsl/restapir/auth"
	"github.com/mauritsl/restapir/authctx"
	"github.com/mauritsl/restapir/query"
	"github.com/mauritsl/restapir/storage"
	"github.com/mauritsl/restapir/storage/memory"
)

const authContextKey = "restapir.authctx"

func main() {
	restapir.ConfigureLogging()

	registry := query.NewRegistry()
	store := memory.New(registry)
	facade := buildFacade(registry)
	mw := &authMiddleware{facade: facade}

	registerTokenRoute(facade)
	registerGraphQLRoutes(store)
	registerFileRoutes(store)

	router := gin.Default()
	mountRoutes(router, mw)

	addr := os.Getenv("RESTAPIR_LISTEN_ADDRESS")
	if addr == "" {
		addr = "localhost:8080"
	}
	log.Info("restapir-server: listening", "address", addr)
	if err := router.Run(addr); err != nil {
		log.Error("restapir-server: server stopped", "error", err)
	}
}

// authMiddleware resolves a request's Authorization header into a Context
// and stashes it for the wrapped handler, defaulting to admin mode when no
// header is present and answering 401 when the header does not resolve —
// matching the teacher's verifyHeaderToken closure shape, retargeted from
// Okta JWT verification to this engine's own auth.Facade.
type authMiddleware struct {
	facade *auth.Facade
}

func (m *authMiddleware) wrap(handler func(c *gin.Context)) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx, err := m.resolve(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(authContextKey, ctx)
		handler(c)
	}
}

func (m *authMiddleware) resolve(c *gin.Context) (*authctx.Context, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return authctx.Admin(), nil
	}
	return m.facade.ResolveAuthorizationHeader(c.Request.Context(), header)
}

func authFrom(c *gin.Context) *authctx.Context {
	ctx, _ := c.MustGet(authContextKey).(*authctx.Context)
	return ctx
}

// buildFacade assembles an auth.Facade over an in-memory User/Token table.
// A real deployment supplies its own UserLookup/AdminLookup/TokenStore
// (e.g. storage/redisstore.TokenStore) instead of these demo in-memory
// ones.
func buildFacade(registry *query.Registry) *auth.Facade {
	users := memory.NewModel("User", nil)
	registry.Register(users)

	return auth.New(newMemoryTokenStore(), &modelUserLookup{model: users}, nil, nil, auth.Options{})
}

// modelUserLookup adapts the generic in-memory Model's list operation into
// auth.UserLookup, since User is just another registered model rather than
// a bespoke table.
type modelUserLookup struct {
	model *memory.Model
}

func (l *modelUserLookup) FindByUsername(ctx context.Context, username string) (map[string]any, bool, error) {
	return l.find(func(row map[string]any) bool { return row["username"] == username })
}

func (l *modelUserLookup) FindByID(ctx context.Context, id string) (map[string]any, bool, error) {
	return l.find(func(row map[string]any) bool { return row["id"] == id })
}

func (l *modelUserLookup) find(match func(map[string]any) bool) (map[string]any, bool, error) {
	rows, err := l.model.Execute(authctx.Admin(), "list", nil, nil)
	if err != nil {
		return nil, false, err
	}
	for _, row := range rows.([]any) {
		m := row.(map[string]any)
		if match(m) {
			return m, true, nil
		}
	}
	return nil, false, nil
}

// memoryTokenStore is a trivial in-process TokenStore for the demo server;
// a real deployment uses storage/redisstore.TokenStore instead.
type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]auth.Token
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: map[string]auth.Token{}}
}

func (s *memoryTokenStore) Save(ctx context.Context, token auth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = token
	return nil
}

func (s *memoryTokenStore) Lookup(ctx context.Context, tokenString string) (auth.Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[tokenString]
	return tok, ok, nil
}

func registerTokenRoute(facade *auth.Facade) {
	_ = Register(RestMethod{
		Verb:   POST,
		Path:   "/token",
		Public: true,
		Handler: func(c *gin.Context) {
			var body struct {
				Username string `json:"username" form:"username"`
				Password string `json:"password" form:"password"`
			}
			if err := c.ShouldBind(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tok, err := facade.IssueToken(c.Request.Context(), body.Username, body.Password)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": tok.Token})
		},
	})
}

func registerGraphQLRoutes(store storage.Storage) {
	handler := func(c *gin.Context) {
		var body struct {
			Query     string `json:"query" form:"query"`
			Variables any    `json:"variables"`
		}
		if c.Request.Method == http.MethodGet {
			body.Query = c.Query("query")
		} else if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := store.Query(c.Request.Context(), authFrom(c), body.Query, body.Variables)
		if err != nil {
			writeQueryError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
	RegisterMethod(GET, "/graphql", handler)
	RegisterMethod(POST, "/graphql", handler)
}

func registerFileRoutes(store storage.Storage) {
	RegisterMethod(POST, "/file/:entity", func(c *gin.Context) {
		model, ok := store.Model(c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown entity"})
			return
		}
		var params map[string]any
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		out, err := model.Execute(authFrom(c), "create", params, nil)
		if err != nil {
			writeQueryError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	})

	RegisterMethod(GET, "/file/:entity/:id", func(c *gin.Context) {
		model, ok := store.Model(c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown entity"})
			return
		}
		out, err := model.Execute(authFrom(c), "read", map[string]any{"id": c.Param("id")}, nil)
		if err != nil {
			writeQueryError(c, err)
			return
		}
		if out == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, out)
	})
}

func writeQueryError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if queryErr, ok := err.(restapir.Error); ok {
		switch queryErr.Code {
		case restapir.PermissionDenied:
			status = http.StatusForbidden
		case restapir.UnknownEntity, restapir.UnknownField:
			status = http.StatusNotFound
		case restapir.ParseError, restapir.InvalidOperatorArgument:
			status = http.StatusBadRequest
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
