package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// TokenType identifies how an auth token is sent.
type TokenType string

const (
	// TokenBearer sends the token as "Authorization: Bearer <token>".
	TokenBearer TokenType = "bearer"

	// TokenUser sends the token as "User-Token: <token>".
	TokenUser TokenType = "user-token"
)

// LoginRoute is the route of the credential exchange endpoint.
const LoginRoute = "auth/login"

// AuthRequest is a Request that carries authentication headers on every call
// once a token is configured.
type AuthRequest struct {
	*Request

	authToken     string
	authTokenType TokenType
	user          map[string]interface{}
}

// NewAuth returns an AuthRequest bound to baseURL.
func NewAuth(baseURL string, opts ...Option) *AuthRequest {
	return &AuthRequest{Request: New(baseURL, opts...)}
}

// AuthProduction returns an AuthRequest bound to the production API.
func AuthProduction(opts ...Option) *AuthRequest {
	return NewAuth(ProductionURL, opts...)
}

// AuthSandbox returns an AuthRequest bound to the sandbox API.
func AuthSandbox(opts ...Option) *AuthRequest {
	return NewAuth(SandboxURL, opts...)
}

// AuthLocal returns an AuthRequest bound to a local API stack.
func AuthLocal(opts ...Option) *AuthRequest {
	return NewAuth(LocalURL, opts...)
}

// AuthURL returns an AuthRequest bound to an arbitrary base URL.
func AuthURL(u string, opts ...Option) *AuthRequest {
	return NewAuth(u, opts...)
}

// The builder methods below keep the chain typed as *AuthRequest so Login and
// the token setters stay reachable. Other Request methods return the embedded
// *Request, which shares state with a.

// SetMethod is Request.SetMethod.
func (a *AuthRequest) SetMethod(method string) *AuthRequest {
	a.Request.SetMethod(method)
	return a
}

// SetRoute is Request.SetRoute.
func (a *AuthRequest) SetRoute(route string) *AuthRequest {
	a.Request.SetRoute(route)
	return a
}

// Path is Request.Path.
func (a *AuthRequest) Path(name string, args ...interface{}) *AuthRequest {
	a.Request.Path(name, args...)
	return a
}

// SetParam is Request.SetParam.
func (a *AuthRequest) SetParam(bucket, key string, value interface{}) *AuthRequest {
	a.Request.SetParam(bucket, key, value)
	return a
}

// AddHeader is Request.AddHeader.
func (a *AuthRequest) AddHeader(key, value string) *AuthRequest {
	a.Request.AddHeader(key, value)
	return a
}

// SetMerchant is Request.SetMerchant.
func (a *AuthRequest) SetMerchant(alias string) *AuthRequest {
	a.Request.SetMerchant(alias)
	return a
}

// ForceAlias is Request.ForceAlias.
func (a *AuthRequest) ForceAlias() *AuthRequest {
	a.Request.ForceAlias()
	return a
}

// ForgetAlias is Request.ForgetAlias.
func (a *AuthRequest) ForgetAlias() *AuthRequest {
	a.Request.ForgetAlias()
	return a
}

// AuthToken returns the configured token, or "" before one is set.
func (a *AuthRequest) AuthToken() string {
	return a.authToken
}

// AuthTokenType returns the configured token type, or "" before one is set.
func (a *AuthRequest) AuthTokenType() TokenType {
	return a.authTokenType
}

// User returns the user object of the last successful Login.
func (a *AuthRequest) User() map[string]interface{} {
	return a.user
}

// SetUserToken authenticates following calls with a User-Token header.
func (a *AuthRequest) SetUserToken(token string) *AuthRequest {
	_ = a.ConfigureAuthToken(TokenUser, token)
	return a
}

// SetJwt authenticates following calls with a bearer Authorization header.
func (a *AuthRequest) SetJwt(jwt string) *AuthRequest {
	_ = a.ConfigureAuthToken(TokenBearer, jwt)
	return a
}

// ConfigureAuthToken stores token and sets the header matching tokenType.
// Headers set by an earlier token of the other type are left in place.
func (a *AuthRequest) ConfigureAuthToken(tokenType TokenType, token string) error {
	switch tokenType {
	case TokenBearer:
		a.AddHeader("Authorization", "Bearer "+token)
	case TokenUser:
		a.AddHeader("User-Token", token)
	default:
		return newBuilderError(ErrInvalidTokenType, a.Request, http.StatusNotAcceptable,
			"Invalid Token type. Available: %s, %s", TokenBearer, TokenUser)
	}

	a.authToken = token
	a.authTokenType = tokenType
	return nil
}

// Login exchanges credentials for a token and configures it. Errors of the
// underlying call are returned unchanged.
//
// The email and password fields stay in the body afterwards, so a following
// call on the same AuthRequest sends them again; a GET puts them in the query
// string. Call SetBody(nil) after Login, or log in on a dedicated
// AuthRequest, when that matters.
func (a *AuthRequest) Login(ctx context.Context, username, password string) error {
	resp, err := a.SetRoute(LoginRoute).Post(ctx, map[string]interface{}{
		"email":    username,
		"password": password,
	})
	if err != nil {
		return err
	}

	body := resp.Body()
	tokenType, _ := body["token_type"].(string)
	token, _ := body["access_token"].(string)
	if token == "" {
		return &RequestError{
			Message:    "login response carries no access_token",
			StatusCode: resp.HTTPStatus,
			Response:   resp,
			Cause:      errors.New("missing access_token"),
			request:    a.Request,
		}
	}

	if err := a.ConfigureAuthToken(TokenType(tokenType), token); err != nil {
		return err
	}

	if user, ok := body["user"].(map[string]interface{}); ok {
		a.user = user
	}

	return nil
}
