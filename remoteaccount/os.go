package remoteaccount

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownOS = errors.New("unknown operating system")

// OS is the platform class of a remote account.
type OS string

const (
	Linux   OS = "linux"
	Windows OS = "windows"
)

var knownOS = []OS{Linux, Windows}

func ParseOS(s string) (OS, error) {
	os := OS(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range knownOS {
		if os == known {
			return os, nil
		}
	}
	return "", fmt.Errorf("%w '%s'", ErrUnknownOS, s)
}

func (os OS) String() string {
	return string(os)
}
