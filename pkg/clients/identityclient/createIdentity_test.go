package identityclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/identitytoolkit/v3"
)

// mockRelyingParty implements relyingParty for testing
type mockRelyingParty struct {
	uid        string
	signupErr  error
	resetErr   error
	requests   []*identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest
	resetsSent []string
}

func (m *mockRelyingParty) SignupNewUser(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest) (*identitytoolkit.SignupNewUserResponse, error) {
	m.requests = append(m.requests, req)
	if m.signupErr != nil {
		return nil, m.signupErr
	}
	return &identitytoolkit.SignupNewUserResponse{LocalId: m.uid, Email: req.Email}, nil
}

func (m *mockRelyingParty) SendPasswordReset(ctx context.Context, email string) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resetsSent = append(m.resetsSent, email)
	return nil
}

func TestCreateIdentity(t *testing.T) {
	api := &mockRelyingParty{uid: "uid-1"}
	c := &Client{api: api, logger: zap.NewNop()}

	uid, err := c.CreateIdentity(context.Background(), "Chris Lee", "chris@example.com")

	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	require.Len(t, api.requests, 1)
	assert.Equal(t, "Chris Lee", api.requests[0].DisplayName)
	assert.Equal(t, []string{"chris@example.com"}, api.resetsSent)
}

func TestCreateIdentity_ResetFailureIsNotFatal(t *testing.T) {
	c := &Client{api: &mockRelyingParty{uid: "uid-1", resetErr: errors.New("quota")}, logger: zap.NewNop()}

	uid, err := c.CreateIdentity(context.Background(), "Chris Lee", "chris@example.com")

	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
}

func TestCreateIdentity_Errors(t *testing.T) {
	c := &Client{api: &mockRelyingParty{signupErr: errors.New("EMAIL_EXISTS")}, logger: zap.NewNop()}
	_, err := c.CreateIdentity(context.Background(), "A", "a@example.com")
	assert.ErrorContains(t, err, "EMAIL_EXISTS")

	c = &Client{api: &mockRelyingParty{}, logger: zap.NewNop()}
	_, err = c.CreateIdentity(context.Background(), "A", "a@example.com")
	assert.ErrorContains(t, err, "no uid")
}
