package handlers

import (
	"OcuCare/models"
	"OcuCare/services"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	ProvisionProfileFn func(ctx context.Context, profile *models.UserProfile) error
	AuthenticateUserFn func(ctx context.Context, email, password string) (*models.UserProfile, error)
	GetProfileFn       func(ctx context.Context, userID string) (*models.UserProfile, error)
	ResolveDoctorFn    func(ctx context.Context) (*models.UserProfile, error)
}

var _ services.UserService = (*mockUserService)(nil)

func (m *mockUserService) ProvisionProfile(ctx context.Context, profile *models.UserProfile) error {
	if m.ProvisionProfileFn == nil {
		return nil
	}
	return m.ProvisionProfileFn(ctx, profile)
}

func (m *mockUserService) AuthenticateUser(ctx context.Context, email, password string) (*models.UserProfile, error) {
	if m.AuthenticateUserFn == nil {
		return nil, nil
	}
	return m.AuthenticateUserFn(ctx, email, password)
}

func (m *mockUserService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if m.GetProfileFn == nil {
		return nil, nil
	}
	return m.GetProfileFn(ctx, userID)
}

func (m *mockUserService) ResolveDoctor(ctx context.Context) (*models.UserProfile, error) {
	if m.ResolveDoctorFn == nil {
		return nil, nil
	}
	return m.ResolveDoctorFn(ctx)
}

func postRegister(t *testing.T, handler *AuthHandler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)
	return recorder
}

func TestRegisterExistingIDWithWrongPasswordIsRejected(t *testing.T) {
	userService := &mockUserService{
		ProvisionProfileFn: func(ctx context.Context, profile *models.UserProfile) error {
			return errors.Wrapf(services.ErrNotAuthenticated, "profile %s already exists", profile.ID)
		},
	}
	handler := NewAuthHandler(userService)

	recorder := postRegister(t, handler, map[string]string{
		"id":       "doc1",
		"email":    "attacker@evil.test",
		"password": "attackerpw1",
		"name":     "Mallory",
	})

	assert.Equal(t, 401, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "accessToken", "no token is minted for someone else's id")
}

func TestRegisterNewProfileSucceeds(t *testing.T) {
	t.Setenv("SYMMETRIC_KEY", "0123456789abcdef0123456789abcdef")

	userService := &mockUserService{
		ProvisionProfileFn: func(ctx context.Context, profile *models.UserProfile) error {
			assert.Equal(t, models.RolePatient, profile.Role)
			return nil
		},
	}
	handler := NewAuthHandler(userService)

	recorder := postRegister(t, handler, map[string]string{
		"email":    "p1@example.com",
		"password": "hunter2secret",
		"name":     "Alice",
	})

	assert.Equal(t, 201, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "accessToken")
}
