// Package auth implements the engine's Authentication Facade: resolving
// Basic/Bearer credentials into a Context, and issuing bearer tokens for the
// POST /token grant.
package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/mauritsl/restapir"
	"github.com/mauritsl/restapir/authctx"
	"github.com/mauritsl/restapir/password"
)

// TokenStore persists and looks up issued bearer tokens.
type TokenStore interface {
	Save(ctx context.Context, token Token) error
	Lookup(ctx context.Context, tokenString string) (Token, bool, error)
}

// UserLookup resolves a username to its stored row (must contain the
// configured password field, "id", and any fields projected into the
// bearer-resolved Context).
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (map[string]any, bool, error)
	FindByID(ctx context.Context, id string) (map[string]any, bool, error)
}

// AdminLookup resolves a Basic-auth username to a pre-hashed admin
// password, independent of the regular user table.
type AdminLookup interface {
	FindAdmin(ctx context.Context, username string) (encodedPassword string, ok bool)
}

// Options configures field names and token lifetime; all fields have
// workable defaults.
type Options struct {
	UsernameField string        // default "username"
	PasswordField string        // default "password"
	UserFields    []string      // fields projected onto a bearer-resolved Context's user; nil means all
	TTL           time.Duration // zero means tokens never expire
}

func (o Options) withDefaults() Options {
	if o.UsernameField == "" {
		o.UsernameField = "username"
	}
	if o.PasswordField == "" {
		o.PasswordField = "password"
	}
	return o
}

// Facade is the engine's single entry point for turning request credentials
// into an authctx.Context, and for minting new bearer tokens.
type Facade struct {
	tokens  TokenStore
	users   UserLookup
	admins  AdminLookup
	policy  *authctx.Policy
	options Options
}

// New builds a Facade. admins may be nil if Basic auth is not configured.
func New(tokens TokenStore, users UserLookup, admins AdminLookup, policy *authctx.Policy, options Options) *Facade {
	return &Facade{tokens: tokens, users: users, admins: admins, policy: policy, options: options.withDefaults()}
}

// ResolveAuthorizationHeader dispatches a raw Authorization header value to
// ResolveBasic or ResolveBearer.
func (f *Facade) ResolveAuthorizationHeader(ctx context.Context, header string) (*authctx.Context, error) {
	switch {
	case strings.HasPrefix(header, "Basic "):
		return f.resolveBasicHeader(ctx, strings.TrimPrefix(header, "Basic "))
	case strings.HasPrefix(header, "Bearer "):
		return f.ResolveBearer(ctx, strings.TrimPrefix(header, "Bearer "))
	default:
		return nil, restapir.New(restapir.InvalidCredentials, "auth: unrecognized Authorization scheme")
	}
}

func (f *Facade) resolveBasicHeader(ctx context.Context, encoded string) (*authctx.Context, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, restapir.Newf(restapir.InvalidCredentials, "auth: decoding basic credentials: %v", err)
	}
	user, pass, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil, restapir.New(restapir.InvalidCredentials, "auth: malformed basic credentials")
	}
	return f.ResolveBasic(ctx, user, pass)
}

// ResolveBasic verifies user:pass against the admin table. On success it
// returns admin mode (a nil *authctx.Context): Basic auth never carries a
// regular, access-checked user identity.
func (f *Facade) ResolveBasic(ctx context.Context, user, pass string) (*authctx.Context, error) {
	if f.admins == nil {
		return nil, restapir.New(restapir.InvalidCredentials, "auth: basic authentication is not configured")
	}
	encoded, ok := f.admins.FindAdmin(ctx, user)
	if !ok {
		return nil, restapir.New(restapir.InvalidCredentials, "auth: unknown admin user")
	}
	valid, err := password.IsValid(encoded, pass)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, restapir.New(restapir.InvalidCredentials, "auth: incorrect admin password")
	}
	return authctx.Admin(), nil
}

// ResolveBearer looks up tokenString and, if present and unexpired,
// attaches its user (projected to Options.UserFields) to a new Context.
func (f *Facade) ResolveBearer(ctx context.Context, tokenString string) (*authctx.Context, error) {
	tok, ok, err := f.tokens.Lookup(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if !ok || tok.Expired(time.Now()) {
		return nil, restapir.New(restapir.InvalidCredentials, "auth: unknown or expired token")
	}
	row, ok, err := f.users.FindByID(ctx, tok.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, restapir.New(restapir.InvalidCredentials, "auth: token references a deleted user")
	}
	return authctx.New(f.policy, projectFields(row, f.options.UserFields)), nil
}

func projectFields(row map[string]any, fields []string) map[string]any {
	if fields == nil {
		return row
	}
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if v, ok := row[field]; ok {
			out[field] = v
		}
	}
	return out
}

// IssueToken implements the POST /token password grant: validate the
// username/password pair and mint a fresh token on success.
func (f *Facade) IssueToken(ctx context.Context, username, plaintext string) (Token, error) {
	row, ok, err := f.users.FindByUsername(ctx, username)
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, restapir.New(restapir.InvalidCredentials, "auth: unknown user")
	}
	encoded, _ := row[f.options.PasswordField].(string)
	valid, err := password.IsValid(encoded, plaintext)
	if err != nil {
		return Token{}, restapir.New(restapir.InvalidCredentials, "auth: incorrect password")
	}
	if !valid {
		return Token{}, restapir.New(restapir.InvalidCredentials, "auth: incorrect password")
	}
	id, _ := row["id"].(string)
	tokenString, err := newTokenString()
	if err != nil {
		return Token{}, err
	}
	tok := Token{Token: tokenString, UserID: id, IssuedAt: time.Now(), TTL: f.options.TTL}
	if err := f.tokens.Save(ctx, tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}
