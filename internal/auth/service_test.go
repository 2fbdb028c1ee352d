package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmvoss/hotelier/internal/config"
	"github.com/jmvoss/hotelier/internal/database"
	"github.com/jmvoss/hotelier/internal/entities"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(db.DB, config.Auth{
		BcryptCost:       bcrypt.MinCost,
		TokenExpiry:      time.Hour,
		MaxLoginAttempts: 3,
		LockoutDuration:  time.Minute,
	})
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:     "alice@example.com",
		Password:  "password123",
		FirstName: "Alice",
		LastName:  "Smith",
		Phone:     "+1-202-555-0101",
	}
}

func TestRegisterCreatesGuest(t *testing.T) {
	s := newTestService(t)

	user, err := s.Register(validRegistration())
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, entities.UserRoleGuest, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantErr error
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }, ErrEmailRequired},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }, ErrEmailInvalid},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, ErrPasswordRequired},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, ErrPasswordTooShort},
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }, ErrNameRequired},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }, ErrNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)
			_, err := s.Register(in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestService(t)

	_, err := s.Register(validRegistration())
	require.NoError(t, err)

	_, err = s.Register(validRegistration())
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestCreateUserWithRole(t *testing.T) {
	s := newTestService(t)

	user, err := s.CreateUser(validRegistration(), entities.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, user.Role)

	in := validRegistration()
	in.Email = "bob@example.com"
	_, err = s.CreateUser(in, entities.UserRole("manager"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthenticate(t *testing.T) {
	s := newTestService(t)
	_, err := s.Register(validRegistration())
	require.NoError(t, err)

	user, err := s.Authenticate("alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotNil(t, user.LastLoginAt)

	_, err = s.Authenticate("alice@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = s.Authenticate("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticateLockout(t *testing.T) {
	s := newTestService(t)
	_, err := s.Register(validRegistration())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = s.Authenticate("alice@example.com", "wrong password")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	}

	// Locked now, even with the right password.
	_, err = s.Authenticate("alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestAuthenticateResetsFailureCount(t *testing.T) {
	s := newTestService(t)
	_, err := s.Register(validRegistration())
	require.NoError(t, err)

	// Two failures stay under the threshold of three.
	_, _ = s.Authenticate("alice@example.com", "wrong password")
	_, _ = s.Authenticate("alice@example.com", "wrong password")

	user, err := s.Authenticate("alice@example.com", "password123")
	require.NoError(t, err)

	// The counter is reset, so two more failures do not lock the account.
	_, _ = s.Authenticate("alice@example.com", "wrong password")
	_, _ = s.Authenticate("alice@example.com", "wrong password")
	_, err = s.Authenticate("alice@example.com", "password123")
	assert.NoError(t, err)

	fresh, err := s.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, fresh.FailedLoginCount)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestService(t)
	user, err := s.Register(validRegistration())
	require.NoError(t, err)

	updated, err := s.UpdateProfile(user.ID, ProfileInput{
		FirstName: "Alicia",
		LastName:  "Smith-Jones",
		Phone:     "+1-202-555-0199",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "Smith-Jones", updated.LastName)
	assert.Equal(t, "+1-202-555-0199", updated.Phone)

	_, err = s.UpdateProfile(user.ID, ProfileInput{FirstName: "", LastName: "Smith"})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = s.UpdateProfile(9999, ProfileInput{FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	s := newTestService(t)
	user, err := s.Register(validRegistration())
	require.NoError(t, err)

	err = s.ChangePassword(user.ID, "wrong password", "newpassword123")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	require.NoError(t, s.ChangePassword(user.ID, "password123", "newpassword123"))

	_, err = s.Authenticate("alice@example.com", "newpassword123")
	assert.NoError(t, err)
}

func TestSetUserRole(t *testing.T) {
	s := newTestService(t)
	user, err := s.Register(validRegistration())
	require.NoError(t, err)

	require.NoError(t, s.SetUserRole(user.ID, entities.UserRoleStaff))

	fresh, err := s.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleStaff, fresh.Role)

	assert.ErrorIs(t, s.SetUserRole(user.ID, "manager"), ErrInvalidRole)
	assert.ErrorIs(t, s.SetUserRole(9999, entities.UserRoleStaff), ErrUserNotFound)
}

func TestTokenLifecycle(t *testing.T) {
	s := newTestService(t)
	user, err := s.Register(validRegistration())
	require.NoError(t, err)

	token, err := s.GenerateToken(user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.ValidateToken("bogus-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, s.RevokeToken(user.ID))
	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpiry(t *testing.T) {
	s := newTestService(t)
	user, err := s.Register(validRegistration())
	require.NoError(t, err)

	token, err := s.GenerateToken(user.ID)
	require.NoError(t, err)

	// Backdate the token past the configured expiry.
	created := time.Now().Add(-2 * time.Hour)
	require.NoError(t, s.db.Model(&entities.User{}).Where("id = ?", user.ID).
		Update("token_created_at", created).Error)

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestGenerateTokenUnknownUser(t *testing.T) {
	s := newTestService(t)
	_, err := s.GenerateToken(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestHasUsers(t *testing.T) {
	s := newTestService(t)

	has, err := s.HasUsers()
	require.NoError(t, err)
	assert.False(t, has)

	_, err = s.Register(validRegistration())
	require.NoError(t, err)

	has, err = s.HasUsers()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestListUsers(t *testing.T) {
	s := newTestService(t)

	_, err := s.Register(validRegistration())
	require.NoError(t, err)
	in := validRegistration()
	in.Email = "bob@example.com"
	_, err = s.Register(in)
	require.NoError(t, err)

	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
