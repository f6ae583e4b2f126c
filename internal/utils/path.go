package utils

import (
	"path"
	"path/filepath"
	"strings"
)

// ToTclPath converts a local path to the forward slash form the Tcl server
// accepts on every platform.
func ToTclPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// RemotePath returns where a local file lands in dir on the server host.
// Remote hosts always use forward slashes.
func RemotePath(dir, local string) string {
	return path.Join(ToTclPath(dir), filepath.Base(ToTclPath(local)))
}

// Ext returns the lower case extension of p, accepting either separator.
func Ext(p string) string {
	return strings.ToLower(path.Ext(ToTclPath(p)))
}
