package identityclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// relyingParty is the subset of the Identity Toolkit API used to provision members
type relyingParty interface {
	SignupNewUser(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest) (*identitytoolkit.SignupNewUserResponse, error)
	SendPasswordReset(ctx context.Context, email string) error
}

type apiRelyingParty struct {
	service *identitytoolkit.Service
}

func (a apiRelyingParty) SignupNewUser(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest) (*identitytoolkit.SignupNewUserResponse, error) {
	return a.service.Relyingparty.SignupNewUser(req).Context(ctx).Do()
}

func (a apiRelyingParty) SendPasswordReset(ctx context.Context, email string) error {
	_, err := a.service.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	return err
}

// Client creates Firebase Authentication identities for new members
type Client struct {
	api    relyingParty
	logger *zap.Logger
}

// NewClient creates an identity client authorised by tokens
func NewClient(ctx context.Context, tokens oauth2.TokenSource, logger *zap.Logger) (*Client, error) {
	service, err := identitytoolkit.NewService(ctx, option.WithTokenSource(tokens))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit service: %w", err)
	}

	return &Client{api: apiRelyingParty{service: service}, logger: logger}, nil
}
