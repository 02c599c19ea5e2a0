package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reference namespaces carried in the first segment of a payment reference.
const (
	ReferencePurchase   = "telegram"
	ReferenceAdminGrant = "admin_grant"
)

// PaymentReference is the decoded form of "<namespace>:<userID>:<unixMillis>".
type PaymentReference struct {
	Namespace string
	UserID    int64
	Timestamp int64
}

// ParseReference splits an external reference id. Exactly three colon
// separated parts are required and the user id must be a positive integer.
func ParseReference(ref string) (PaymentReference, error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 3 {
		return PaymentReference{}, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}

	namespace := parts[0]
	if namespace != ReferencePurchase && namespace != ReferenceAdminGrant {
		return PaymentReference{}, fmt.Errorf("%w: unknown namespace %q", ErrInvalidReference, namespace)
	}

	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || userID <= 0 {
		return PaymentReference{}, fmt.Errorf("%w: bad user id %q", ErrInvalidReference, parts[1])
	}

	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return PaymentReference{}, fmt.Errorf("%w: bad timestamp %q", ErrInvalidReference, parts[2])
	}

	return PaymentReference{Namespace: namespace, UserID: userID, Timestamp: ts}, nil
}

// NewReference builds a reference id for userID stamped at now.
func NewReference(namespace string, userID int64, now time.Time) string {
	return fmt.Sprintf("%s:%d:%d", namespace, userID, now.UnixMilli())
}

// String re-encodes the reference.
func (r PaymentReference) String() string {
	return fmt.Sprintf("%s:%d:%d", r.Namespace, r.UserID, r.Timestamp)
}
