// Package gateway isolates all shape translation and remote-call error
// handling for the four CRM collections behind uniform per-entity gateways.
// Every read is filtered by, and every write stamped with, the identifier of
// the operator resolved through the session provider.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pharmadesk/backend/internal/session"
)

const defaultRequestTimeout = 10 * time.Second

var (
	// ErrTransport marks connectivity or remote-store failures, including
	// request deadline expiry.
	ErrTransport = errors.New("gateway: remote store unavailable")
	// ErrNotFound marks update/delete targets missing for the current operator.
	ErrNotFound = errors.New("gateway: record not found")
	// ErrValidation marks writes rejected by a constraint.
	ErrValidation = errors.New("gateway: constraint violation")
	// ErrDecode marks stored payloads that cannot be parsed back into
	// structured data.
	ErrDecode = errors.New("gateway: stored payload cannot be decoded")

	errMissingDatabase = errors.New("database handle is required")
	errMissingSession  = errors.New("session provider is required")
	errMissingProvider = errors.New("id provider is required")

	noOpLogger = zap.NewNop()
)

// Error carries the failing operation code alongside the taxonomy kind, so
// callers can classify with errors.Is and operators can grep the code.
type Error struct {
	code  string
	kind  error
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.cause)
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	unwrapped := make([]error, 0, 2)
	if e.kind != nil {
		unwrapped = append(unwrapped, e.kind)
	}
	if e.cause != nil {
		unwrapped = append(unwrapped, e.cause)
	}
	return unwrapped
}

// Code returns the operation.reason code for the failure.
func (e *Error) Code() string {
	return e.code
}

func newError(operation, reason string, kind, cause error) error {
	return &Error{code: fmt.Sprintf("%s.%s", operation, reason), kind: kind, cause: cause}
}

// classifyWrite maps a storage error onto the failure taxonomy.
func classifyWrite(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrInvalidData), errors.Is(err, gorm.ErrInvalidValue):
		return ErrValidation
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTransport
	default:
		return ErrTransport
	}
}

// IDProvider yields identifiers for newly inserted rows.
type IDProvider interface {
	NewID() (string, error)
}

// Config carries the dependencies shared by every entity gateway.
type Config struct {
	Database   *gorm.DB
	Session    session.Provider
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
	// Timeout bounds each remote operation; deadline expiry surfaces as
	// ErrTransport. Zero applies the default.
	Timeout time.Duration
}

// core is the per-gateway state assembled from Config.
type core struct {
	db      *gorm.DB
	session session.Provider
	clock   func() time.Time
	ids     IDProvider
	logger  *zap.Logger
	timeout time.Duration
}

func newCore(cfg Config, operation string) (core, error) {
	if cfg.Database == nil {
		return core{}, newError(operation, "missing_database", nil, errMissingDatabase)
	}
	if cfg.Session == nil {
		return core{}, newError(operation, "missing_session", nil, errMissingSession)
	}
	if cfg.IDProvider == nil {
		return core{}, newError(operation, "missing_id_provider", nil, errMissingProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return core{
		db:      cfg.Database,
		session: cfg.Session,
		clock:   clock,
		ids:     cfg.IDProvider,
		logger:  logger,
		timeout: timeout,
	}, nil
}

func (c core) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c core) currentUser(ctx context.Context, operation string) (string, error) {
	userID, err := c.session.CurrentUserID(ctx)
	if err != nil {
		c.logError(operation, "session_unresolved", err)
		return "", newError(operation, "session_unresolved", ErrTransport, err)
	}
	return userID, nil
}

func (c core) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	c.logger.Error("gateway error", attrs...)
}

// encodeStringList stores a product or certification list as a JSON column.
func encodeStringList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(encoded)
}

// decodeStringList reads a JSON list column, defaulting to an empty list when
// the column is NULL or undecodable.
func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return []string{}
	}
	return values
}
