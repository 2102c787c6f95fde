package echoapi

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
	"github.com/JCBT04/Capstone/core/parent"
)

// claimsContextKey is where the JWT middleware stashes the parsed token.
const claimsContextKey = "sessionToken"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username  string `json:"username,omitempty"`
	IsTeacher bool   `json:"is_teacher,omitempty"` // staff portal access
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    claimsContextKey,
		Claims:        new(Claims),
	}
}

// newSessionClaims builds the claims for a freshly logged-in session.
func newSessionClaims(conf *core.Config, s parent.Session) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   s.Username,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username:  s.Username,
		IsTeacher: s.IsStaff(),
	}
}

// generateToken generates a signed JWT token string representing the Claims.
func generateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(claimsContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextSession loads the stored session and checks it against the caller's
// claims. A session that was cleared or replaced since the token was issued
// is not authenticated anymore.
func contextSession(ctx echo.Context, svc *parent.Service) (parent.Session, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return parent.Session{}, err
	}
	s, err := svc.Session(ctx.Request().Context())
	if err != nil {
		return parent.Session{}, errors.Wrap(err, "loading session")
	}
	if !s.Authenticated() || !strings.EqualFold(s.Username, claims.Username) {
		return parent.Session{}, errUnauthorized
	}
	return s, nil
}

// staffMiddleware restricts a route to staff sessions.
func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if !claims.IsTeacher {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
