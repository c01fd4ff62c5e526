package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"
)

func requireValidationMessage(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, message, appErr.Message)
}

func TestNewURLValidator(t *testing.T) {
	validator := NewURLValidator()
	require.NotNil(t, validator)
	assert.Equal(t, []string{"http", "https"}, validator.allowedSchemes)
	assert.Empty(t, validator.allowedHosts)
}

func TestNewURLValidatorWithOptions(t *testing.T) {
	validator := NewURLValidatorWithOptions([]string{"https"}, []string{"example.com", "test.com"})
	assert.Equal(t, []string{"https"}, validator.allowedSchemes)
	assert.Len(t, validator.allowedHosts, 2)
}

func TestValidateImageURL_ValidURLs(t *testing.T) {
	validator := NewURLValidator()

	validURLs := []string{
		"http://example.com/image.jpg",
		"https://example.com/image.png",
		"https://subdomain.example.com/path/to/image.gif",
		"http://192.168.1.1/image.jpg",
		"HTTPS://example.com/upper.jpg",
	}

	for _, u := range validURLs {
		assert.NoError(t, validator.ValidateImageURL(u), u)
	}
}

func TestValidateImageURL_EmptyURL(t *testing.T) {
	validator := NewURLValidator()

	for _, u := range []string{"", "   ", "\t\n"} {
		requireValidationMessage(t, validator.ValidateImageURL(u), "URL cannot be empty")
	}
}

func TestValidateImageURL_InvalidFormat(t *testing.T) {
	validator := NewURLValidator()

	invalidURLs := []string{
		"not-a-url",
		"://missing-scheme",
		"http://",
		"ftp://example.com",
	}

	for _, u := range invalidURLs {
		assert.Error(t, validator.ValidateImageURL(u), u)
	}
}

func TestValidateImageURL_NoHost(t *testing.T) {
	validator := NewURLValidator()

	for _, u := range []string{"http://", "https://", "http:///path"} {
		requireValidationMessage(t, validator.ValidateImageURL(u), "URL must have a valid host")
	}
}

func TestValidateImageURL_InvalidScheme(t *testing.T) {
	validator := NewURLValidator()

	invalidSchemeURLs := []string{
		"ftp://example.com/image.jpg",
		"file://local/path/image.jpg",
		"azblob://photos/cat.jpg",
		"data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8/5+hHgAHggJ/PchI7wAAAABJRU5ErkJggg==",
	}

	for _, u := range invalidSchemeURLs {
		requireValidationMessage(t, validator.ValidateImageURL(u), "URL scheme not allowed")
	}
}

func TestValidateImageURL_BlobScheme(t *testing.T) {
	validator := NewURLValidatorWithOptions([]string{"http", "https", "azblob"}, nil)

	assert.NoError(t, validator.ValidateImageURL("azblob://photos/2024/cat.jpg"))
	requireValidationMessage(t, validator.ValidateImageURL("azblob:///cat.jpg"), "URL must have a valid host")
}

func TestValidateImageURL_BlobLocation(t *testing.T) {
	validator := NewURLValidatorWithOptions([]string{"https", BlobScheme}, nil)

	tests := []struct {
		name    string
		url     string
		message string
	}{
		{"valid nested", "azblob://shop-photos-01/2024/07/cat.jpg", ""},
		{"container too short", "azblob://ab/cat.jpg", "Invalid blob container name"},
		{"uppercase container", "azblob://Photos/cat.jpg", "Invalid blob container name"},
		{"double hyphen", "azblob://my--photos/cat.jpg", "Invalid blob container name"},
		{"trailing hyphen", "azblob://photos-/cat.jpg", "Invalid blob container name"},
		{"container too long", "azblob://" + strings.Repeat("a", 64) + "/cat.jpg", "Invalid blob container name"},
		{"no blob", "azblob://photos", "Blob location must name a blob"},
		{"directory only", "azblob://photos/2024/", "Blob location must name a blob"},
		{"blob too long", "azblob://photos/" + strings.Repeat("b", 1025), "Blob name too long"},
		{"http host is not a container", "https://Photos.example.com/cat.jpg", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateImageURL(tt.url)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			requireValidationMessage(t, err, tt.message)
		})
	}
}

func TestValidateImageURL_RestrictedHosts(t *testing.T) {
	validator := NewURLValidatorWithOptions([]string{"http", "https"}, []string{"example.com", "trusted.com"})

	assert.NoError(t, validator.ValidateImageURL("http://example.com/image.jpg"))
	assert.NoError(t, validator.ValidateImageURL("https://trusted.com/image.png"))

	for _, u := range []string{"http://malicious.com/image.jpg", "https://untrusted.com/image.png"} {
		requireValidationMessage(t, validator.ValidateImageURL(u), "URL host not allowed")
	}
}

func TestIsSchemeAllowed(t *testing.T) {
	validator := NewURLValidator()

	assert.True(t, validator.isSchemeAllowed("http"))
	assert.True(t, validator.isSchemeAllowed("https"))
	assert.False(t, validator.isSchemeAllowed("ftp"))
	assert.False(t, validator.isSchemeAllowed("file"))
}

func TestIsHostAllowed(t *testing.T) {
	assert.True(t, NewURLValidator().isHostAllowed("example.com"))

	restricted := NewURLValidatorWithOptions([]string{"http", "https"}, []string{"example.com", "trusted.com"})
	assert.True(t, restricted.isHostAllowed("example.com"))
	assert.True(t, restricted.isHostAllowed("trusted.com"))
	assert.False(t, restricted.isHostAllowed("malicious.com"))
}
