package postgrest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func TestSelect(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]row{{ID: "u_1", Email: "a@b.com"}})
	}))
	defer server.Close()

	client := New(server.URL, "service-key")

	query := url.Values{}
	query.Set("email", Eq("a@b.com"))
	query.Set("limit", "1")

	var rows []row
	require.NoError(t, client.Select(context.Background(), "User", query, &rows))

	require.Len(t, rows, 1)
	assert.Equal(t, "u_1", rows[0].ID)
	assert.Equal(t, "/User", gotPath)
	assert.Contains(t, gotQuery, "email=eq.a%40b.com")
	assert.Equal(t, "service-key", gotAPIKey)
	assert.Equal(t, "Bearer service-key", gotAuth)
}

func TestInsert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var body row
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		body.ID = "u_new"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]row{body})
	}))
	defer server.Close()

	client := New(server.URL, "service-key")

	var created []row
	require.NoError(t, client.Insert(context.Background(), "User", row{Email: "new@b.com"}, &created))
	require.Len(t, created, 1)
	assert.Equal(t, "u_new", created[0].ID)
	assert.Equal(t, "new@b.com", created[0].Email)
}

func TestErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "bad-key")

	var rows []row
	err := client.Select(context.Background(), "User", nil, &rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestEq(t *testing.T) {
	assert.Equal(t, "eq.42", Eq("42"))
}
