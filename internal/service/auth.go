package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/client"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/jwt"
	"github.com/shiftwyse/shiftwyse/policy"
)

var tracer = otel.Tracer("auth")

type AuthService struct {
	config     domain.Config
	client     *client.Client
	policy     *policy.Policy
	sessionTTL time.Duration
}

func NewAuthService(
	config domain.Config,
	client *client.Client,
	policy *policy.Policy,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		config:     config,
		client:     client,
		policy:     policy,
		sessionTTL: sessionTTL,
	}
}

type BootstrapResult struct {
	Identity shiftwyse.Identity
	Token    string
}

// Bootstrap resolves an identity for a new session. It walks the ladder
// resume -> exchange -> anonymous, and falls back to a locally generated
// unauthenticated identity when the identity provider is unreachable.
// Identity resolution never fails the session.
func (s *AuthService) Bootstrap(ctx context.Context, sessionID, exchangeToken string) (BootstrapResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Bootstrap")
	defer span.End()

	identity := s.resolve(ctx, sessionID, exchangeToken)
	identity.IsPrivileged = s.policy.IsPrivileged(identity.ID)

	token, err := jwt.Create(identity.ID, identity.Authenticated, s.config.SessionSecret, s.sessionTTL)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to mint session token"))
		return BootstrapResult{}, err
	}

	return BootstrapResult{
		Identity: identity,
		Token:    token,
	}, nil
}

func (s *AuthService) resolve(ctx context.Context, sessionID, exchangeToken string) shiftwyse.Identity {
	ctx, span := tracer.Start(ctx, "Auth.Service.resolve")
	defer span.End()

	if sessionID != "" {
		session, err := s.client.ResumeSession(ctx, sessionID)
		if err == nil {
			return shiftwyse.Identity{
				ID:            session.UserID,
				Authenticated: true,
			}
		}
		span.RecordError(errors.Wrap(err, "failed to resume session"))
		slog.Info("session resume failed",
			slog.String("error", err.Error()),
			slog.String("module", "auth"),
		)
	}

	if exchangeToken != "" {
		session, err := s.client.ExchangeToken(ctx, exchangeToken)
		if err == nil {
			return shiftwyse.Identity{
				ID:            session.UserID,
				Authenticated: true,
			}
		}
		span.RecordError(errors.Wrap(err, "failed to exchange token"))
		slog.Info("token exchange failed",
			slog.String("error", err.Error()),
			slog.String("module", "auth"),
		)
	}

	session, err := s.client.CreateAnonymousSession(ctx)
	if err == nil {
		return shiftwyse.Identity{
			ID:            session.UserID,
			Authenticated: true,
		}
	}
	span.RecordError(errors.Wrap(err, "failed to create anonymous session"))
	slog.Warn("identity provider unreachable, continuing unauthenticated",
		slog.String("error", err.Error()),
		slog.String("module", "auth"),
	)

	return shiftwyse.Identity{
		ID:            uuid.New().String(),
		Authenticated: false,
	}
}

type AuthResult struct {
	UserID        string
	Authenticated bool
	IsPrivileged  bool
}

// AuthJwt validates a previously minted session token.
func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	claims, err := jwt.Validate(token, s.config.SessionSecret)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	return &AuthResult{
		UserID:        claims.Subject,
		Authenticated: claims.Authenticated,
		IsPrivileged:  s.policy.IsPrivileged(claims.Subject),
	}, nil
}
