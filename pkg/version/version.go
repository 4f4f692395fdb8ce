// Package version provides version information for reqresp
package version

// Version is the current version of the reqresp library
const Version = "0.3.0"

// GetVersion returns the current version of the library
func GetVersion() string {
	return Version
}
