package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray maps a Postgres uuid[] column, used for the denormalized
// trip list on the user record. A NULL column scans to an empty slice.
type UUIDArray []uuid.UUID

// Scan decodes the {id,id,...} array literal the driver hands back.
func (a *UUIDArray) Scan(src any) error {
	if src == nil {
		*a = UUIDArray{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return a.decodeLiteral(v)
	case []byte:
		return a.decodeLiteral(string(v))
	default:
		return fmt.Errorf("UUIDArray: unsupported Scan type %T", src)
	}
}

// Value renders the slice as a Postgres array literal.
func (a UUIDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	parts := make([]string, 0, len(a))
	for _, id := range a {
		parts = append(parts, id.String())
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func (a *UUIDArray) decodeLiteral(literal string) error {
	literal = strings.TrimSpace(literal)
	if literal == "" || literal == "{}" {
		*a = UUIDArray{}
		return nil
	}
	literal = strings.TrimPrefix(literal, "{")
	literal = strings.TrimSuffix(literal, "}")
	if strings.TrimSpace(literal) == "" {
		*a = UUIDArray{}
		return nil
	}

	// Elements may be quoted depending on how the literal was produced.
	elements := strings.Split(literal, ",")
	ids := make([]uuid.UUID, 0, len(elements))
	for _, element := range elements {
		element = strings.TrimSpace(strings.Trim(element, `"`))
		id, err := uuid.Parse(element)
		if err != nil {
			return fmt.Errorf("UUIDArray: parse %q: %w", element, err)
		}
		ids = append(ids, id)
	}
	*a = UUIDArray(ids)
	return nil
}
