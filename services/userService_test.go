package services

import (
	"OcuCare/models"
	"OcuCare/utils"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() utils.RetryPolicy {
	return utils.RetryPolicy{
		MaxAttempts: 3,
		Backoff:     utils.LinearBackoff(time.Millisecond),
	}
}

func TestProvisionProfileCreatesNewWithHashedPassword(t *testing.T) {
	var created *models.UserProfile
	users := &mockUserDirectory{
		CreateFn: func(ctx context.Context, profile *models.UserProfile) error {
			created = profile
			return nil
		},
	}
	service := NewUserService(users, fastRetry())

	profile := &models.UserProfile{ID: "p1", Email: "p1@example.com", Password: "hunter2secret", Name: "Alice"}
	require.NoError(t, service.ProvisionProfile(context.Background(), profile))

	require.NotNil(t, created)
	assert.Equal(t, models.RolePatient, created.Role, "default role is patient")
	assert.NotEqual(t, "hunter2secret", created.Password)
	assert.True(t, utils.CheckPassword(created.Password, "hunter2secret"))
}

func TestProvisionProfileRetriesExistenceCheck(t *testing.T) {
	attempts := 0
	users := &mockUserDirectory{
		GetByIDFn: func(ctx context.Context, id string) (*models.UserProfile, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient read failure")
			}
			return nil, nil
		},
	}
	service := NewUserService(users, fastRetry())

	profile := &models.UserProfile{ID: "p1", Email: "p1@example.com", Password: "hunter2secret", Name: "Alice"}
	require.NoError(t, service.ProvisionProfile(context.Background(), profile))
	assert.Equal(t, 3, attempts)
}

func TestProvisionProfileExhaustedRetriesIsHardFailure(t *testing.T) {
	attempts := 0
	createCalled := false
	users := &mockUserDirectory{
		GetByIDFn: func(ctx context.Context, id string) (*models.UserProfile, error) {
			attempts++
			return nil, errors.New("store unreachable")
		},
		CreateFn: func(ctx context.Context, profile *models.UserProfile) error {
			createCalled = true
			return nil
		},
	}
	service := NewUserService(users, fastRetry())

	profile := &models.UserProfile{ID: "p1", Email: "p1@example.com", Password: "hunter2secret", Name: "Alice"}
	err := service.ProvisionProfile(context.Background(), profile)
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.False(t, createCalled, "no write after the check gives up")
}

func TestProvisionProfileNeverDowngradesRole(t *testing.T) {
	hashed, err := utils.HashPassword("hunter2secret")
	require.NoError(t, err)
	existing := &models.UserProfile{ID: "doc1", Email: "old@example.com", Password: hashed, Role: models.RoleDoctor, Name: "Dr. Amin"}
	var updated *models.UserProfile
	users := &mockUserDirectory{
		GetByIDFn: func(ctx context.Context, id string) (*models.UserProfile, error) {
			copied := *existing
			return &copied, nil
		},
		UpdateFn: func(ctx context.Context, profile *models.UserProfile) error {
			updated = profile
			return nil
		},
	}
	service := NewUserService(users, fastRetry())

	profile := &models.UserProfile{ID: "doc1", Email: "new@example.com", Password: "hunter2secret", Role: models.RolePatient, Name: "Dr. A. Amin"}
	require.NoError(t, service.ProvisionProfile(context.Background(), profile))

	require.NotNil(t, updated)
	assert.Equal(t, models.RoleDoctor, updated.Role, "an elevated role survives a sync")
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "Dr. A. Amin", updated.Name)
	assert.Equal(t, models.RoleDoctor, profile.Role, "caller sees the effective role")
}

func TestProvisionProfileExistingIDRequiresOwnerCredentials(t *testing.T) {
	hashed, err := utils.HashPassword("doctors-own-password")
	require.NoError(t, err)
	existing := &models.UserProfile{ID: "doc1", Email: "doctor@example.com", Password: hashed, Role: models.RoleDoctor, Name: "Dr. Amin"}

	updateCalled := false
	users := &mockUserDirectory{
		GetByIDFn: func(ctx context.Context, id string) (*models.UserProfile, error) {
			copied := *existing
			return &copied, nil
		},
		UpdateFn: func(ctx context.Context, profile *models.UserProfile) error {
			updateCalled = true
			return nil
		},
	}
	service := NewUserService(users, fastRetry())

	// A caller who knows the doctor's id but not the password gets nothing:
	// no sync, no role copy-back.
	profile := &models.UserProfile{ID: "doc1", Email: "attacker@example.com", Password: "attackerpw1", Name: "Mallory"}
	err = service.ProvisionProfile(context.Background(), profile)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, updateCalled, "the victim's profile is untouched")
	assert.NotEqual(t, models.RoleDoctor, profile.Role, "the elevated role never leaks to the caller")
}

func TestProvisionProfileRejectsInvalidData(t *testing.T) {
	service := NewUserService(&mockUserDirectory{}, fastRetry())

	err := service.ProvisionProfile(context.Background(), &models.UserProfile{ID: "p1", Email: "not-an-email", Password: "hunter2secret"})
	assert.Error(t, err)

	err = service.ProvisionProfile(context.Background(), &models.UserProfile{ID: "p1", Email: "p1@example.com", Password: "short"})
	assert.Error(t, err)
}

func TestAuthenticateUser(t *testing.T) {
	hashed, err := utils.HashPassword("hunter2secret")
	require.NoError(t, err)

	users := &mockUserDirectory{
		GetByEmailFn: func(ctx context.Context, email string) (*models.UserProfile, error) {
			if email == "p1@example.com" {
				return &models.UserProfile{ID: "p1", Email: email, Password: hashed}, nil
			}
			return nil, nil
		},
	}
	service := NewUserService(users, fastRetry())

	user, err := service.AuthenticateUser(context.Background(), "p1@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, "p1", user.ID)

	_, err = service.AuthenticateUser(context.Background(), "p1@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = service.AuthenticateUser(context.Background(), "ghost@example.com", "hunter2secret")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestResolveDoctor(t *testing.T) {
	users := &mockUserDirectory{
		FindDoctorFn: func(ctx context.Context) (*models.UserProfile, error) {
			return &models.UserProfile{ID: "doc1", Role: models.RoleDoctor}, nil
		},
	}
	service := NewUserService(users, fastRetry())

	doctor, err := service.ResolveDoctor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "doc1", doctor.ID)

	service = NewUserService(&mockUserDirectory{}, fastRetry())
	_, err = service.ResolveDoctor(context.Background())
	assert.ErrorIs(t, err, ErrNoDoctorAvailable)
}
