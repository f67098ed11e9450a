package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// HTTPVerb names one of the HTTP methods a RestMethod answers to.
type HTTPVerb int

const (
	Unknown HTTPVerb = iota
	GET
	POST
	PUT
	PATCH
	DELETE
)

// RestMethod is one registered route: a verb, a gin path pattern and its
// handler. Public routes (the /token grant) run without auth resolution;
// every other route gets a Context attached before Handler runs.
type RestMethod struct {
	Verb    HTTPVerb
	Path    string
	Handler func(c *gin.Context)
	Public  bool
}

var restMethods []RestMethod

// RegisterMethod is a helper for Register.
func RegisterMethod(verb HTTPVerb, path string, h func(c *gin.Context)) {
	_ = Register(RestMethod{Verb: verb, Path: path, Handler: h})
}

// Register adds m to the route table. Registering the same (verb, path)
// pair twice is a programming error caught at startup, not at request time.
func Register(m RestMethod) error {
	for _, existing := range restMethods {
		if existing.Verb == m.Verb && existing.Path == m.Path {
			return fmt.Errorf("restapir-server: a handler for %d %s is already registered", m.Verb, m.Path)
		}
	}
	restMethods = append(restMethods, m)
	return nil
}

// mountRoutes attaches every registered RestMethod to router, wrapping each
// non-public handler with auth so it resolves a Context before running.
func mountRoutes(router *gin.Engine, mw *authMiddleware) {
	for _, rm := range restMethods {
		handler := rm.Handler
		if !rm.Public {
			handler = mw.wrap(rm.Handler)
		}
		switch rm.Verb {
		case GET:
			router.GET(rm.Path, handler)
		case POST:
			router.POST(rm.Path, handler)
		case PUT:
			router.PUT(rm.Path, handler)
		case PATCH:
			router.PATCH(rm.Path, handler)
		case DELETE:
			router.DELETE(rm.Path, handler)
		default:
			panic(fmt.Sprintf("restapir-server: HTTP verb %d not supported", rm.Verb))
		}
	}
}
