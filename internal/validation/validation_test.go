package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "secret1", false},
		{"Exactly Min Length", "abcdef", false},
		{"Exactly Max Length", strings.Repeat("a", 72), false},
		{"Too Short", "abc12", true},
		{"Too Long", strings.Repeat("a", 73), true},
		{"Unicode Counts Runes", "ÅÅÅÅÅÅ", false},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Leading Underscore", "_user", false},
		{"Too Short", "tu", true},
		{"Max Length", strings.Repeat("a", 50), false},
		{"Too Long", strings.Repeat("a", 51), true},
		{"Illegal Chars", "user@123", true},
		{"Hyphen", "user-name", true},
		{"Space", "user name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	// 254 chars total: 64 local + @ + 185 domain label + ".com" (4)
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Subdomain", "test@mail.example.co", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Too Long", "a" + emailAt254, true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Space In Local Part", "user @example.com", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestValidateURL(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateURL("https://cdn.example.com/a.png"))
	assert.NoError(t, ValidateURL("http://example.com"))
	assert.Error(t, ValidateURL("ftp://example.com/a.png"))
	assert.Error(t, ValidateURL("javascript:alert(1)"))
	assert.Error(t, ValidateURL("/relative/path.png"))
	assert.Error(t, ValidateURL("https://"+strings.Repeat("a", MaxURLLength)))
}

func TestValidateText(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateText("Post text", "hello", MaxPostLength))
	assert.EqualError(t, ValidateText("Post text", "   ", MaxPostLength), "Post text is required")
	assert.Error(t, ValidateText("Comment", strings.Repeat("x", MaxCommentLength+1), MaxCommentLength))
	assert.NoError(t, ValidateText("Comment", strings.Repeat("é", MaxCommentLength), MaxCommentLength))
	assert.NoError(t, ValidateLength("Bio", "", MaxBioLength))
}
