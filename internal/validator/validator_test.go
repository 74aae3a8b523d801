package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  string
	}{
		{"ok", "Asha", "asha@example.com", "longenough", ""},
		{"no name", " ", "asha@example.com", "longenough", "name is required"},
		{"bad email", "Asha", "asha@", "longenough", "email format is invalid"},
		{"empty password", "Asha", "asha@example.com", "", "required"},
		{"short password", "Asha", "asha@example.com", "short", "at least 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.userName, tt.email, tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "wrong item", CleanText("  wrong   item ", 300))
	assert.Equal(t, "hi", CleanText("<b>hi</b><script>alert(1)</script>", 300))
	assert.Equal(t, "Tom & Jerry", CleanText("Tom & Jerry", 300))
	assert.Equal(t, "abc", CleanText("abcdef", 3))
	assert.Equal(t, "", CleanText("<img src=x>", 10))
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://res.cloudinary.com/x/image.png"))
	assert.True(t, IsHTTPURL("http://localhost:9000/a.jpg"))
	assert.False(t, IsHTTPURL("javascript:alert(1)"))
	assert.False(t, IsHTTPURL("/relative/path.png"))
	assert.False(t, IsHTTPURL(""))
}
