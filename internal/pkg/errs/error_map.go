/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
// Entries without a Status default to 400 Bad Request.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Invalid JSON body."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request body is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrInvalidPurpose:        {Code: ErrInvalidPurpose, Message: "Unknown connection purpose."},

	// 2xxx: Writer Lock and Chat Protocol Errors
	ErrWriterActive:          {Code: ErrWriterActive, Message: "A Writer is already active. Log in as a Reader or try again later.", Status: http.StatusConflict},
	ErrWriterConflict:        {Code: ErrWriterConflict, Message: "Another Writer connected first. Try again later.", Status: http.StatusConflict},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrMessageNotPermitted:   {Code: ErrMessageNotPermitted, Message: "This connection may not send that message.", Status: http.StatusForbidden},
	ErrCoordinatorStopped:    {Code: ErrCoordinatorStopped, Message: "Chat is shutting down.", Status: http.StatusServiceUnavailable},

	// 3xxx: User, Session, and Security Errors
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "A valid email is required."},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Password must be between 6 and 72 characters."},
	ErrInvalidRole:        {Code: ErrInvalidRole, Message: "Role must be Writer or Reader."},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "User already exists.", Status: http.StatusConflict},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid credentials.", Status: http.StatusUnauthorized},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrInvalidName:        {Code: ErrInvalidName, Message: "Name must be between 1 and 50 characters."},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
