package origin

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name        string
		redirectURI string
		want        string
		wantErr     bool
	}{
		{
			name:        "https redirect uri",
			redirectURI: "https://apps.example.com/auth/infomaniak/callback",
			want:        "https://apps.example.com",
		},
		{
			name:        "port preserved",
			redirectURI: "http://localhost:3000/auth/infomaniak/callback",
			want:        "http://localhost:3000",
		},
		{
			name:        "unset",
			redirectURI: "",
			wantErr:     true,
		},
		{
			name:        "malformed",
			redirectURI: "not a url",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonical(tt.redirectURI)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "http://p-42.apps.example.com/builder", nil)
	assert.Equal(t, "http://p-42.apps.example.com", FromRequest(r, false))

	// behind a TLS-terminating proxy in production
	assert.Equal(t, "https://p-42.apps.example.com", FromRequest(r, true))
}

func TestIsCross(t *testing.T) {
	assert.False(t, IsCross("https://apps.example.com", "https://apps.example.com"))
	assert.True(t, IsCross("https://p-42.apps.example.com", "https://apps.example.com"))
}

func TestIsCanvas(t *testing.T) {
	r := httptest.NewRequest("GET", "https://apps.example.com/canvas?projectId=42", nil)
	assert.True(t, IsCanvas(r.URL))

	r = httptest.NewRequest("GET", "https://apps.example.com/dashboard", nil)
	assert.False(t, IsCanvas(r.URL))
}

func TestIsDashboard(t *testing.T) {
	canonical := "https://apps.example.com"

	r := httptest.NewRequest("GET", "https://apps.example.com/dashboard", nil)
	assert.True(t, IsDashboard(r, canonical, true))

	// canvas traffic on the canonical origin is not dashboard traffic
	r = httptest.NewRequest("GET", "https://apps.example.com/canvas?projectId=42", nil)
	assert.False(t, IsDashboard(r, canonical, true))

	// tenant subdomain
	r = httptest.NewRequest("GET", "https://p-42.apps.example.com/builder", nil)
	assert.False(t, IsDashboard(r, canonical, true))
}
