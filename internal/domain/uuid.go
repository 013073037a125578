package domain

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// ParseUUID converts a string into a pgtype.UUID, returning an EINVALID
// domain error when the string is not a UUID.
func ParseUUID(op, s string) (pgtype.UUID, error) {
	var id pgtype.UUID
	if err := id.Scan(s); err != nil {
		return pgtype.UUID{}, Invalid(op, fmt.Sprintf("invalid id: %s", s))
	}
	return id, nil
}

// UUIDString formats a pgtype.UUID in the canonical dashed form.
// Returns the empty string for a null UUID.
func UUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	b := id.Bytes
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
