package security

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
)

// idTokenVerifier is the subset of *auth.Client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseResolver resolves Firebase ID tokens. The role comes from the "role"
// custom claim; tokens without one are treated as customers.
type FirebaseResolver struct {
	client idTokenVerifier
}

func NewFirebaseResolver(ctx context.Context, projectID, credentialsFile string) (*FirebaseResolver, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase auth: %w", err)
	}
	return &FirebaseResolver{client: client}, nil
}

func (f *FirebaseResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	logger.ExternalServiceCall("firebase", "VerifyIDToken")
	tok, err := f.client.VerifyIDToken(ctx, token)
	logger.ExternalServiceResult("firebase", "VerifyIDToken", err)
	if err != nil {
		return nil, ErrInvalidToken
	}

	role := domain.RoleCustomer
	if raw, ok := tok.Claims["role"].(string); ok && raw != "" {
		role = domain.Role(raw)
	}
	if !role.Valid() {
		return nil, ErrMissingRole
	}
	return &Identity{ID: tok.UID, Role: role}, nil
}
