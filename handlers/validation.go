package handlers

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Validation constants
const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	PasswordMinLength = 8
	PasswordMaxLength = 72 // bcrypt rejects inputs longer than 72 bytes
	FilenameMaxLength = 255
)

// Regex patterns for validation
var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUsername validates a display name
func ValidateUsername(username string) error {
	if len(username) < UsernameMinLength {
		return fmt.Errorf("username must be at least %d characters", UsernameMinLength)
	}
	if len(username) > UsernameMaxLength {
		return fmt.Errorf("username must be at most %d characters", UsernameMaxLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidateEmail validates an email address. Email is the account identifier,
// so unlike a display name it is mandatory.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email address is too long")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address format")
	}
	return nil
}

// ValidatePassword validates a password
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters", PasswordMinLength)
	}
	if len(password) > PasswordMaxLength {
		return fmt.Errorf("password must be at most %d characters", PasswordMaxLength)
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	// Require at least 3 of 4 character types
	count := 0
	if hasUpper {
		count++
	}
	if hasLower {
		count++
	}
	if hasNumber {
		count++
	}
	if hasSpecial {
		count++
	}

	if count < 3 {
		return fmt.Errorf("password must contain at least 3 of: uppercase, lowercase, number, special character")
	}

	return nil
}

// ValidatePdfFilename validates an uploaded filename. Only PDF documents are
// accepted.
func ValidatePdfFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(filename) > FilenameMaxLength {
		return fmt.Errorf("filename is too long (max %d characters)", FilenameMaxLength)
	}
	if strings.ContainsRune(filename, '\x00') {
		return fmt.Errorf("filename contains invalid characters")
	}
	if strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("filename cannot contain path separators")
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return fmt.Errorf("only PDF files are allowed")
	}
	return nil
}
