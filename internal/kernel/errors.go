package kernel

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the fatal taxonomy in spec §7. Wrap with fmt.Errorf
// and %w so callers can errors.Is against these.
var (
	// ErrUnsupportedTranslation means the Translator has no rule for a
	// (winner-kind, peer-kind) pair.
	ErrUnsupportedTranslation = errors.New("kernel: unsupported translation pair")

	// ErrUnknownEngineKind means NewEvent received an engine whose Kind()
	// is outside the five recognized kinds.
	ErrUnknownEngineKind = errors.New("kernel: unknown engine kind")

	// ErrSchedulingViolation means engine.T() != next_time after Step(),
	// an internal bug or an engine contract violation.
	ErrSchedulingViolation = errors.New("kernel: scheduling violation")

	// ErrOwnershipViolation means a borrow target collides with an owned
	// species, or (at Coordinator.Initialize) more than one Event owns the
	// same species.
	ErrOwnershipViolation = errors.New("kernel: ownership violation")

	// errInvalidBorrow is InvalidBorrow from spec §7: mirror was invoked
	// but the peer does not own src. It is never surfaced to callers —
	// mirror silently skips, matching the documented policy — so it stays
	// unexported.
	errInvalidBorrow = errors.New("kernel: invalid borrow")
)

// OwnershipError collects every ownership conflict found during validation,
// rather than failing on the first one. Mirrors the accumulate-all-issues
// style the teacher uses for schema validation.
type OwnershipError struct {
	Issues []string
}

func (e *OwnershipError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return fmt.Sprintf("%d ownership violations: %s", len(e.Issues), strings.Join(e.Issues, "; "))
}

func (e *OwnershipError) Unwrap() error {
	return ErrOwnershipViolation
}

func (e *OwnershipError) add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}
