// Package businessflow contains the core business logic and use cases for creator discovery workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Admin-related errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")

	// Creator-related errors
	ErrCreatorNotFound     = errors.New("creator not found")
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// Campaign-related errors
	ErrCampaignNotFound        = errors.New("campaign not found")
	ErrCampaignNameRequired    = errors.New("campaign name is required")
	ErrCreatorAlreadyInList    = errors.New("creator already in campaign")
	ErrCreatorNotInCampaign    = errors.New("creator not in campaign")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrCampaignUUIDRequired    = errors.New("campaign UUID is required")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 0")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 500")

	ErrCacheNotAvailable = errors.New("cache not available")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsCampaignNameRequired(err error) bool {
	return errors.Is(err, ErrCampaignNameRequired)
}

func IsCampaignUUIDRequired(err error) bool {
	return errors.Is(err, ErrCampaignUUIDRequired)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsCreatorNotFound(err error) bool {
	return errors.Is(err, ErrCreatorNotFound)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCreatorAlreadyInList(err error) bool {
	return errors.Is(err, ErrCreatorAlreadyInList)
}

func IsCreatorNotInCampaign(err error) bool {
	return errors.Is(err, ErrCreatorNotInCampaign)
}

func IsUnsupportedPlatform(err error) bool {
	return errors.Is(err, ErrUnsupportedPlatform)
}

func IsUnsupportedExportFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedExportFormat)
}
