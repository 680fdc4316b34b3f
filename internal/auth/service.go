package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mrlokans/snipsnap/internal/database"
	"github.com/mrlokans/snipsnap/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrBadCredentials   = errors.New("invalid email or password")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = database.ErrUserExists
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrPasswordRequired = errors.New("password is required")
)

// UserStore defines the user data access the service needs.
type UserStore interface {
	CreateUser(user *entities.User) error
	GetUserByID(id uint) (*entities.User, error)
	GetUserByEmail(email string) (*entities.User, error)
	UpdateProfile(id uint, email, firstName, lastName string) (*entities.User, error)
	UpdatePasswordHash(id uint, hash string) error
	DeleteUser(id uint) error
	CountUsers() (int64, error)
}

// Service handles registration, credential checks and account management.
type Service struct {
	users  UserStore
	hasher Hasher

	// dummyDigest is verified against when the email is unknown so a failed
	// login costs the same whether or not the account exists.
	dummyOnce   sync.Once
	dummyDigest string
}

// NewService creates a new authentication service.
func NewService(users UserStore, hasher Hasher) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	// RFC 5321 limit is 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// Register creates a new account with a hashed password.
func (s *Service) Register(email, password, firstName, lastName string) (*entities.User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Email:        email,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: passwordHash,
	}
	if err := s.users.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks credentials and returns the user. Unknown emails and
// wrong passwords both yield ErrBadCredentials.
func (s *Service) Authenticate(email, password string) (*entities.User, error) {
	user, err := s.users.GetUserByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.hasher.Verify(password, s.dummy())
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrBadCredentials
	}

	return user, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("snipsnap-placeholder-password")
		if err == nil {
			s.dummyDigest = digest
		}
	})
	return s.dummyDigest
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the email and names of a user.
func (s *Service) UpdateProfile(id uint, email, firstName, lastName string) (*entities.User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(id, email, strings.TrimSpace(firstName), strings.TrimSpace(lastName))
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUserExists):
			return nil, ErrUserExists
		case errors.Is(err, database.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword updates a user's password after verifying the current one.
// Tokens issued before the change stay valid until they expire.
func (s *Service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return ErrBadCredentials
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.UpdatePasswordHash(userID, newHash)
}

// DeleteAccount removes the user and all data they own.
func (s *Service) DeleteAccount(userID uint) error {
	if err := s.users.DeleteUser(userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
