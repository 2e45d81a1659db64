package schema

import (
	"fmt"
	"regexp"
	"strconv"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var localIDPattern = regexp.MustCompile(`^[Rr]?0*([1-9][0-9]*)$`)

// LocalID formats a requirement number as its document-local identifier, e.g. R0042.
func LocalID(number int) string {
	return fmt.Sprintf("R%04d", number)
}

// ParseLocalID accepts "R0042", "r42" or "42" and returns the requirement number.
func ParseLocalID(s string) (int, error) {
	m := localIDPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid requirement reference %q", s)
	}
	return strconv.Atoi(m[1])
}

// NewRunID generates a conversion run ID in format RUN-{nanoid(10)}.
func NewRunID() (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RUN-%s", id), nil
}
