// Package users is the credential store. It authenticates a person and
// hands the rest of the system an opaque u-<int> identifier; nothing else in
// the repository ever looks inside a user record. Storage is a local sqlite
// database, and passwords are kept only as bcrypt hashes.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lezionipari/coursecore/internal/apperr"
	"github.com/lezionipari/coursecore/internal/platform/logger"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	PublicID     string `gorm:"uniqueIndex;size:16"`
	Role         string
	Name         string
	Surname      string
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	Birthdate    string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registration is the input to Register; every field is validated.
type Registration struct {
	Role      string
	Name      string
	Surname   string
	Email     string
	Password  string
	Birthdate string
}

type Store interface {
	Register(ctx context.Context, reg Registration) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	Get(ctx context.Context, userID string) (*User, error)
	UpdateEmail(ctx context.Context, userID, email string) error
	UpdatePassword(ctx context.Context, userID, password string) error
	UpdateRole(ctx context.Context, userID, role string) error
	Activate(ctx context.Context, userID string) error
	Deactivate(ctx context.Context, userID string) error
}

type store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open opens (or creates) the sqlite database at path and migrates the
// schema.
func Open(path string, baseLog *logger.Logger) (Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open users db %s: %w", path, err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("migrate users db: %w", err)
	}
	return &store{db: db, log: baseLog.With("store", "users")}, nil
}

// Register validates the registration, stores the user with a hashed
// password and returns the allocated public identifier.
func (s *store) Register(ctx context.Context, reg Registration) (string, error) {
	if err := validateRegistration(reg); err != nil {
		return "", err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", reg.Email).Count(&count).Error; err != nil {
		return "", fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return "", apperr.Conflict("email %s is already in use", reg.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Role:         reg.Role,
		Name:         reg.Name,
		Surname:      reg.Surname,
		Email:        reg.Email,
		PasswordHash: string(hash),
		Birthdate:    reg.Birthdate,
		Active:       true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		user.PublicID = fmt.Sprintf("u-%d", user.ID)
		return tx.Model(&user).Update("public_id", user.PublicID).Error
	})
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", "user", user.PublicID, "role", user.Role)
	return user.PublicID, nil
}

// Authenticate checks the credentials and returns the user's public ID. The
// three failure modes (unknown email, wrong password, deactivated account)
// are distinguishable for user-facing reporting.
func (s *store) Authenticate(ctx context.Context, email, password string) (string, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Auth("incorrect email")
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", apperr.Auth("incorrect password")
	}
	if !user.Active {
		return "", apperr.Auth("user has been deactivated, contact support for details")
	}
	return user.PublicID, nil
}

func (s *store) Get(ctx context.Context, userID string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("public_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &user, nil
}

func (s *store) UpdateEmail(ctx context.Context, userID, email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Validation("please type a valid email address")
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("email = ? AND public_id <> ?", email, userID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("email %s is already in use", email)
	}
	return s.updateColumn(ctx, userID, "email", email)
}

func (s *store) UpdatePassword(ctx context.Context, userID, password string) error {
	if !passwordValid(password) {
		return apperr.Validation("please type a valid password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.updateColumn(ctx, userID, "password_hash", string(hash))
}

func (s *store) UpdateRole(ctx context.Context, userID, role string) error {
	if !roleValid(role) {
		return apperr.Validation("please select a user type")
	}
	return s.updateColumn(ctx, userID, "role", role)
}

func (s *store) Activate(ctx context.Context, userID string) error {
	return s.updateColumn(ctx, userID, "active", true)
}

func (s *store) Deactivate(ctx context.Context, userID string) error {
	return s.updateColumn(ctx, userID, "active", false)
}

func (s *store) updateColumn(ctx context.Context, userID, column string, value interface{}) error {
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("public_id = ?", userID).
		Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user %s not found", userID)
	}
	return nil
}
