package identityclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/identitytoolkit/v3"
)

// CreateIdentity creates a password-less account for the member and returns its uid.
// A password reset email is then sent so the member can choose a password;
// failing to send it is logged but does not fail the call.
func (c *Client) CreateIdentity(ctx context.Context, name, email string) (string, error) {
	resp, err := c.api.SignupNewUser(ctx, &identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		DisplayName: name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create identity for %s: %w", email, err)
	}
	if resp.LocalId == "" {
		return "", fmt.Errorf("failed to create identity for %s: no uid returned", email)
	}

	c.logger.Debug("Identity created", zap.String("uid", resp.LocalId), zap.String("email", email))

	if err := c.api.SendPasswordReset(ctx, email); err != nil {
		c.logger.Warn("Failed to send password setup email",
			zap.String("uid", resp.LocalId),
			zap.String("email", email),
			zap.Error(err))
	}

	return resp.LocalId, nil
}
