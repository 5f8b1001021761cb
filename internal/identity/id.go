package identity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidID is returned when a sender string cannot be resolved to an ID.
var ErrInvalidID = errors.New("invalid identifier")

var (
	namePattern    = regexp.MustCompile(`^[0-9A-Za-z_.-]+$`)
	addressPattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)
)

// ID identifies a message sender.
type ID struct {
	Name    string
	Address string
}

// ParseID resolves "name@address" or a bare "address".
func ParseID(s string) (ID, error) {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" {
		return ID{}, fmt.Errorf("%w: empty", ErrInvalidID)
	}

	var id ID
	if at := strings.LastIndexByte(s, '@'); at >= 0 {
		id.Name, id.Address = s[:at], s[at+1:]
		if !namePattern.MatchString(id.Name) {
			return ID{}, fmt.Errorf("%w: bad name in %q", ErrInvalidID, s)
		}
	} else {
		id.Address = s
	}
	if !addressPattern.MatchString(id.Address) {
		return ID{}, fmt.Errorf("%w: bad address in %q", ErrInvalidID, s)
	}
	return id, nil
}

// String returns the canonical form.
func (id ID) String() string {
	if id.Name == "" {
		return id.Address
	}
	return id.Name + "@" + id.Address
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id.Name == "" && id.Address == ""
}
