package npid

import (
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Size is the width of an NPID in bytes.
const Size = 16

// ErrInvalidIdentifier is returned when a value cannot be decoded into an NPID.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// NPID is the fixed-width identifier used as a lobby primary key.
// It travels as lowercase hex outside the process.
type NPID [Size]byte

// Nil is the zero NPID.
var Nil NPID

// New returns a random NPID backed by a version 4 UUID.
func New() NPID {
	return NPID(uuid.New())
}

// FromHex decodes a 32 digit hex string.
func FromHex(s string) (NPID, error) {
	var id NPID
	if len(s) != Size*2 {
		return Nil, fmt.Errorf("%w: expected %d hex digits, got %d", ErrInvalidIdentifier, Size*2, len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return Nil, fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	return id, nil
}

// FromBytes copies a raw 16 byte slice into an NPID.
func FromBytes(b []byte) (NPID, error) {
	var id NPID
	if len(b) != Size {
		return Nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidIdentifier, Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id NPID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id NPID) String() string {
	return id.Hex()
}

func (id NPID) IsNil() bool {
	return id == Nil
}

// MarshalText encodes the NPID as hex, so JSON carries the boundary form.
func (id NPID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

func (id *NPID) UnmarshalText(b []byte) error {
	parsed, err := FromHex(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value stores the raw bytes.
func (id NPID) Value() (driver.Value, error) {
	return id[:], nil
}

func (id *NPID) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := FromBytes(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case string:
		parsed, err := FromBytes([]byte(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case nil:
		*id = Nil
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidIdentifier, src)
	}
}

// GormDataType maps the column to bytea / blob.
func (NPID) GormDataType() string {
	return "bytes"
}
