package validation

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"
)

// BlobScheme marks Azure blob locations: azblob://<container>/<blob path>
const BlobScheme = "azblob"

const maxBlobNameLength = 1024

// containerName follows the Azure naming rules: lowercase letters, digits and
// single hyphens, starting and ending with a letter or digit.
var containerName = regexp.MustCompile(`^[a-z0-9]([a-z0-9]|-[a-z0-9])*$`)

// URLValidator handles URL validation logic
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator creates a new URL validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateImageURL validates if the provided URL is acceptable for image processing.
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if len(v.allowedHosts) > 0 && !v.isHostAllowed(parsedURL.Host) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	if parsedURL.Scheme == BlobScheme {
		return validateBlobLocation(parsedURL)
	}
	return nil
}

// validateBlobLocation checks an azblob:// location, whose host is the
// container and whose path is the blob name.
func validateBlobLocation(u *url.URL) error {
	if n := len(u.Host); n < 3 || n > 63 || !containerName.MatchString(u.Host) {
		return apperrors.NewValidationError("Invalid blob container name", nil)
	}
	blob := strings.TrimPrefix(u.Path, "/")
	if blob == "" || strings.HasSuffix(blob, "/") {
		return apperrors.NewValidationError("Blob location must name a blob", nil)
	}
	if len(blob) > maxBlobNameLength {
		return apperrors.NewValidationError("Blob name too long", nil)
	}
	return nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	return slices.Contains(v.allowedSchemes, strings.ToLower(scheme))
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	return slices.Contains(v.allowedHosts, host)
}
