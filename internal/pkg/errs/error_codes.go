/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the size limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrInvalidPurpose indicates that a connection asked for an unknown purpose.
	ErrInvalidPurpose = 1008
)

// 2xxx: Writer Lock and Chat Protocol Errors
const (
	// ErrWriterActive indicates that a writer session is already active at admission time.
	ErrWriterActive = 2101

	// ErrWriterConflict indicates that the writer slot was taken when the connection registered.
	ErrWriterConflict = 2102

	// ErrMessageContentTooLong indicates that the writer's message exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrMessageNotPermitted indicates a frame the connection's role or purpose does not allow.
	ErrMessageNotPermitted = 2202

	// ErrCoordinatorStopped indicates that the chat coordinator has shut down.
	ErrCoordinatorStopped = 2204
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidEmail indicates a missing or malformed email address.
	ErrInvalidEmail = 3001

	// ErrInvalidPassword indicates that the password does not meet the length rules.
	ErrInvalidPassword = 3002

	// ErrInvalidRole indicates a role other than Writer or Reader.
	ErrInvalidRole = 3003

	// ErrUserAlreadyExists indicates that the email is already registered.
	ErrUserAlreadyExists = 3004

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = 3005

	// ErrUserNotFound indicates that the identity referenced by a token no longer exists.
	ErrUserNotFound = 3006

	// ErrInvalidName indicates an empty or too long display name.
	ErrInvalidName = 3007

	// ErrUnauthorized indicates a missing, malformed or expired session token.
	ErrUnauthorized = 3008
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
