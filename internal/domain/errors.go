package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeConflict     ErrorCode = "CONFLICT"

	// Validation details
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Users and auth
	CodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	CodeEmailTaken         ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"

	// Essays
	CodeEssayNotFound       ErrorCode = "ESSAY_NOT_FOUND"
	CodeEssayNotEvaluated   ErrorCode = "ESSAY_NOT_EVALUATED"
	CodeUnsupportedFileType ErrorCode = "UNSUPPORTED_FILE_TYPE"
	CodeLLMServiceError     ErrorCode = "LLM_SERVICE_ERROR"

	// Friend relationships
	CodeSelfFriendRequest     ErrorCode = "SELF_FRIEND_REQUEST"
	CodeAlreadyFriends        ErrorCode = "ALREADY_FRIENDS"
	CodeRequestAlreadySent    ErrorCode = "FRIEND_REQUEST_ALREADY_SENT"
	CodeRequestAlreadyRecvd   ErrorCode = "FRIEND_REQUEST_ALREADY_RECEIVED"
	CodeFriendRequestNotFound ErrorCode = "FRIEND_REQUEST_NOT_FOUND"
	CodeRequestNotPending     ErrorCode = "FRIEND_REQUEST_NOT_PENDING"
	CodeNotRequestReceiver    ErrorCode = "NOT_REQUEST_RECEIVER"
	CodeNotRequestSender      ErrorCode = "NOT_REQUEST_SENDER"
	CodeNotFriends            ErrorCode = "NOT_FRIENDS"

	// Posts
	CodePostNotFound         ErrorCode = "POST_NOT_FOUND"
	CodeCommentNotFound      ErrorCode = "COMMENT_NOT_FOUND"
	CodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithContext attaches a detail that is echoed back to API clients.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", err)
}

func NewUserNotFoundError(userID string) *DomainError {
	return NewError(CodeUserNotFound, fmt.Sprintf("User not found with ID: %s", userID), nil)
}

func NewEssayNotFoundError(essayID string) *DomainError {
	return NewError(CodeEssayNotFound, fmt.Sprintf("Essay not found with ID: %s", essayID), nil)
}

func NewPostNotFoundError(postID string) *DomainError {
	return NewError(CodePostNotFound, fmt.Sprintf("Post not found with ID: %s", postID), nil)
}

func NewFriendRequestNotFoundError(requestID string) *DomainError {
	return NewError(CodeFriendRequestNotFound, fmt.Sprintf("Friend request not found with ID: %s", requestID), nil)
}

func NewRequestNotPendingError(requestID string, status FriendRequestStatus) *DomainError {
	return NewError(CodeRequestNotPending, "Friend request already processed", nil).
		WithContext("request_id", requestID).
		WithContext("status", string(status))
}
