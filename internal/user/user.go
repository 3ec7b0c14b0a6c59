// Package user resolves the local account name stamped on records.
package user

import (
	"os"
	osuser "os/user"
)

// Current returns the local username, falling back to the USERNAME/USER
// environment variables, then "unknown". Records always carry a creator.
func Current() string {
	if u, err := osuser.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if v := os.Getenv("USERNAME"); v != "" {
		return v
	}
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	return "unknown"
}
