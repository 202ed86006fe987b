package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/staff"
)

const (
	contextTokenKey = "staffToken"
	contextStaffKey = "staff"
)

// Claims represents the authorization claims of the tokens minted by the identity provider.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// NewClaims returns the claims of a token valid for ttl, signed for subject.
func NewClaims(conf *core.Config, subject, email, name string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.Auth.JWTIssuer,
			Subject:   subject,
			Audience:  conf.Auth.JWTAudience,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: email,
		Name:  name,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
// The API only verifies tokens: this is used by the admin CLI and tests.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.Auth.JWTSecret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.Auth.JWTSecret),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// verify checks the claims the jwt middleware leaves alone.
func (c Claims) verify(conf *core.Config) error {
	if c.Subject == "" {
		return errUnauthorized
	}
	if conf.Auth.JWTAudience != "" && !c.VerifyAudience(conf.Auth.JWTAudience, true) {
		return errInvalidToken
	}
	if conf.Auth.JWTIssuer != "" && !c.VerifyIssuer(conf.Auth.JWTIssuer, true) {
		return errInvalidToken
	}
	return nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextStaff returns the staff member loaded by loadStaffMiddleware.
func getContextStaff(ctx echo.Context) (staff.Staff, error) {
	if s, ok := ctx.Get(contextStaffKey).(staff.Staff); ok {
		return s, nil
	}
	return staff.Staff{}, errProfileNotFound
}

// loadStaffMiddleware verifies the token claims and puts the matching staff member, if any, in the context.
func loadStaffMiddleware(svc *staff.Service, conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if err = claims.verify(conf); err != nil {
				return err
			}

			s, err := svc.Get(ctx.Request().Context(), claims.Subject)
			if err == nil {
				ctx.Set(contextStaffKey, s)
			} else if !core.IsNotFound(err) {
				return errors.Wrap(err, "finding staff by ID")
			}
			return next(ctx)
		}
	}
}
