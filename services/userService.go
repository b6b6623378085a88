package services

import (
	"OcuCare/models"
	"OcuCare/utils"
	"context"

	"github.com/pkg/errors"
)

// UserService fronts the user directory: profile provisioning, sign-in and
// doctor resolution.
type UserService interface {
	ProvisionProfile(ctx context.Context, profile *models.UserProfile) error
	AuthenticateUser(ctx context.Context, email, password string) (*models.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	ResolveDoctor(ctx context.Context) (*models.UserProfile, error)
}

type userService struct {
	users UserDirectory
	retry utils.RetryPolicy
}

func NewUserService(users UserDirectory, retry utils.RetryPolicy) UserService {
	return &userService{users: users, retry: retry}
}

// ProvisionProfile creates the profile on first sign-in or syncs an existing
// one. The existence check is retried under the configured policy; exhaustion
// is a hard failure. Re-provisioning an existing id requires the stored
// credentials, so nobody claims another account by guessing its id. The merge
// never downgrades a role: an existing non-patient role survives any later
// sync.
func (s *userService) ProvisionProfile(ctx context.Context, profile *models.UserProfile) error {
	if profile.Role == "" {
		profile.Role = models.RolePatient
	}
	if err := utils.ValidateUserData(*profile); err != nil {
		return errors.Wrap(err, "invalid profile data")
	}

	var existing *models.UserProfile
	if err := s.retry.Do(ctx, func() error {
		var err error
		existing, err = s.users.GetByID(ctx, profile.ID)
		return err
	}); err != nil {
		return errors.Wrap(err, "profile existence check failed")
	}

	if existing == nil {
		hashed, err := utils.HashPassword(profile.Password)
		if err != nil {
			return errors.Wrap(err, "password hashing failed")
		}
		profile.Password = hashed
		if err := s.users.Create(ctx, profile); err != nil {
			return errors.Wrap(err, "profile creation failed")
		}
		return nil
	}

	// Only the account owner may sync an existing profile.
	if !utils.CheckPassword(existing.Password, profile.Password) {
		return errors.Wrapf(ErrNotAuthenticated, "profile %s already exists", profile.ID)
	}

	// Sync mutable fields; preserve an already-elevated role.
	existing.Name = profile.Name
	existing.Email = profile.Email
	if existing.Role != models.RolePatient {
		profile.Role = existing.Role
	} else {
		existing.Role = profile.Role
	}
	if err := s.users.Update(ctx, existing); err != nil {
		return errors.Wrap(err, "profile sync failed")
	}
	*profile = *existing
	return nil
}

func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*models.UserProfile, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "user lookup failed")
	}
	if user == nil || !utils.CheckPassword(user.Password, password) {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "user lookup failed")
	}
	if user == nil {
		return nil, errors.Wrapf(ErrNotFound, "user %s", userID)
	}
	return user, nil
}

// ResolveDoctor returns the single doctor account. With more than one
// admin-role profile present, the earliest-created one wins deterministically.
func (s *userService) ResolveDoctor(ctx context.Context) (*models.UserProfile, error) {
	doctor, err := s.users.FindDoctor(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "doctor lookup failed")
	}
	if doctor == nil {
		return nil, ErrNoDoctorAvailable
	}
	return doctor, nil
}
