package db

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskcore/taskcore/internal/auth"
	"github.com/taskcore/taskcore/internal/models"
)

// CreateUser registers a new account. Email must be unique; login is a
// display name and is what tasks reference as assignee.
func CreateUser(email, login, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	login = strings.TrimSpace(login)

	if email == "" || !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Message: "a valid email is required"}
	}
	if login == "" {
		return nil, &ValidationError{Field: "login", Message: "login must not be empty"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "password must not be empty"}
	}

	var existing models.User
	err := DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicate
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence(err)
	}

	salt, err := auth.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password, salt)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		Login:        login,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    time.Now().UnixMilli(),
	}
	if err := DB.Create(&user).Error; err != nil {
		return nil, persistence(err)
	}
	return &user, nil
}

// GetUserByLogin fetches a user by login name
func GetUserByLogin(login string) (*models.User, error) {
	var user models.User
	err := DB.Where("login = ?", login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}
	return &user, nil
}

// GetUsers retrieves all users, newest first. The session uses the login
// names as assignee suggestions.
func GetUsers() ([]models.User, error) {
	var users []models.User
	if err := DB.Order("created_at_ms DESC").Find(&users).Error; err != nil {
		return nil, persistence(err)
	}
	return users, nil
}

// Authenticate checks a login/password pair and returns the matching
// user. Unknown login and wrong password are deliberately the same error.
func Authenticate(login, password string) (*models.User, error) {
	user, err := GetUserByLogin(login)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.Verify(password, user.Salt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
