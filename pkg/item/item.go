// Package item defines the record type managed by the service.
package item

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// StatusProcessed is the status marker written by the batch engine.
// External consumers filter on this exact string.
const StatusProcessed = "PROCESSED"

// Field limits enforced by Validate.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxStatusLength      = 50
)

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid item")

// Item is a stored record.
type Item struct {
	// ID is assigned by the store on first save and never reused.
	ID int64 `json:"id,omitempty"`

	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// Status is a free-form marker. Only the batch engine mutates it.
	Status string `json:"status,omitempty"`

	// Email is the contact address.
	Email string `json:"email,omitempty"`
}

// ValidationError lists every field problem found by Validate.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(e.Problems, "; "))
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validate checks the field rules for items accepted through the API.
func (it Item) Validate() error {
	var problems []string

	if strings.TrimSpace(it.Name) == "" {
		problems = append(problems, "Name cannot be blank")
	} else if utf8.RuneCountInString(it.Name) > MaxNameLength {
		problems = append(problems, fmt.Sprintf("Name must not be longer than %d characters", MaxNameLength))
	}

	if utf8.RuneCountInString(it.Description) > MaxDescriptionLength {
		problems = append(problems, fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength))
	}

	if utf8.RuneCountInString(it.Status) > MaxStatusLength {
		problems = append(problems, fmt.Sprintf("Status must be at most %d characters", MaxStatusLength))
	}

	switch {
	case strings.TrimSpace(it.Email) == "":
		problems = append(problems, "Email cannot be blank")
	case !validEmail(it.Email):
		problems = append(problems, "Email should be valid")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// validEmail accepts a bare address only (no display name).
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && addr.Name == ""
}
