package squares

import "regexp"

// licenseKeyPattern matches the four hex groups a purchase key carries,
// e.g. "A1B2C3D4-E5F60718-293A4B5C-6D7E8F90".
var licenseKeyPattern = regexp.MustCompile(`(?i)^[A-F0-9]{8}-[A-F0-9]{8}-[A-F0-9]{8}-[A-F0-9]{8}$`)

// ValidLicenseKey checks the key format only. Remote verification
// against the seller is the caller's concern; a well-formed key is
// accepted here and recorded in the directory.
func ValidLicenseKey(key string) bool {
	return licenseKeyPattern.MatchString(key)
}
