package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropwise-dev/cropwise/internal/cli/session"
	"github.com/cropwise-dev/cropwise/internal/cli/soil"
)

func newAPIServer(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLogin_SavesWholeSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "e@x.com", req.Email)
		assert.Equal(t, "Secret123", req.Password)

		// Numeric ids from older servers decode as strings
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"message": "Login successful",
			"access_token": "a1",
			"refresh_token": "r1",
			"user": {"id": 42, "email": "e@x.com", "full_name": "Jo", "is_admin": true}
		}`))
	})
	server := newAPIServer(t, mux)

	store := session.NewMemoryStore()
	c := New(server.URL, store)

	resp, err := c.Login(context.Background(), "e@x.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, ID("42"), resp.User.ID)

	assert.True(t, store.IsActive())
	userID, ok := store.Get(session.FieldUserID)
	require.True(t, ok)
	assert.Equal(t, "42", userID)
	isAdmin, ok := store.Get(session.FieldIsAdmin)
	require.True(t, ok)
	assert.Equal(t, "1", isAdmin)
}

func TestLogin_InvalidCredentialsLeavesStoreEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
	})
	server := newAPIServer(t, mux)

	store := session.NewMemoryStore()
	c := New(server.URL, store)

	_, err := c.Login(context.Background(), "e@x.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", UserMessage(err))
	assert.False(t, store.IsActive())
}

func TestLogin_MissingTokenIsMalformed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
	})
	server := newAPIServer(t, mux)

	store := session.NewMemoryStore()
	_, err := New(server.URL, store).Login(context.Background(), "e@x.com", "Secret123")
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.False(t, store.IsActive())
}

func TestLogout_ClearsSessionEvenWhenServerFails(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		called = true
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r1", body["refresh_token"])
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := newAPIServer(t, mux)

	store := signedInStore(t)
	require.NoError(t, New(server.URL, store).Logout(context.Background()))

	assert.True(t, called)
	assert.False(t, store.IsActive())
}

func TestLogout_WithoutSessionSkipsServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	server := newAPIServer(t, mux)

	require.NoError(t, New(server.URL, session.NewMemoryStore()).Logout(context.Background()))
}

func TestHistory_UsesStoredUserID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /history/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.PathValue("id"))
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "p2", "user_id": "42", "predicted_crop": "rice", "best_model": "nearest_centroid", "created_at": "2026-01-02T10:00:00Z"},
			{"id": "p1", "user_id": "42", "predicted_crop": "maize", "best_model": "nearest_centroid", "created_at": "2026-01-01T10:00:00Z"},
		})
	})
	server := newAPIServer(t, mux)

	records, err := New(server.URL, signedInStore(t)).History(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rice", records[0].PredictedCrop)
	assert.Equal(t, ID("42"), records[1].UserID)
}

func TestHistory_WithoutUserIDRedirects(t *testing.T) {
	_, err := New("http://127.0.0.1:1", session.NewMemoryStore()).History(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestUpdateProfile_MirrorsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /update_profile", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Joanna", body["full_name"])
		writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
	})
	server := newAPIServer(t, mux)

	store := signedInStore(t)
	msg, err := New(server.URL, store).UpdateProfile(context.Background(), "Joanna", "jo@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Profile updated successfully", msg)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Joanna", got.FullName)
	assert.Equal(t, "jo@x.com", got.UserEmail)
	assert.Equal(t, "a1", got.AccessToken)
}

func TestUpdateProfile_ConflictKeepsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /update_profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Email already in use"})
	})
	server := newAPIServer(t, mux)

	store := signedInStore(t)
	_, err := New(server.URL, store).UpdateProfile(context.Background(), "Joanna", "taken@x.com")
	assert.EqualError(t, err, "Email already in use")

	email, _ := store.Get(session.FieldUserEmail)
	assert.Equal(t, "e@x.com", email)
}

func TestPredict_FillsInputWhenServerOmitsIt(t *testing.T) {
	input := soil.Input{N: 90, P: 42, K: 43, Temperature: 21, Humidity: 82, Ph: 6.5, Rainfall: 203}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", func(w http.ResponseWriter, r *http.Request) {
		var got soil.Input
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, input, got)
		writeJSON(w, http.StatusOK, map[string]any{
			"predictions":      map[string]string{"nearest_centroid": "rice", "cosine": "rice"},
			"accuracies":       map[string]float64{"nearest_centroid": 94.2, "cosine": 90.1},
			"best_model":       "nearest_centroid",
			"recommended_crop": "rice",
		})
	})
	server := newAPIServer(t, mux)

	result, err := New(server.URL, signedInStore(t)).Predict(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "rice", result.RecommendedCrop)
	require.NotNil(t, result.Input)
	assert.Equal(t, input, *result.Input)
}

func TestPredict_MissingPredictionsIsMalformed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"recommended_crop": "rice"})
	})
	server := newAPIServer(t, mux)

	_, err := New(server.URL, signedInStore(t)).Predict(context.Background(), soil.Input{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestAdminUsers_SendsPaging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "u1", "email": "a@x.com", "full_name": "A"}})
	})
	server := newAPIServer(t, mux)

	users, err := New(server.URL, signedInStore(t)).AdminUsers(context.Background(), 2, 5)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@x.com", users[0].Email)
}

func TestForgotAndResetPassword_ArePublic(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /forgot_password", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]string{"message": "If the email exists, a reset link has been sent", "reset_token": "tok"})
	})
	mux.HandleFunc("POST /reset_password", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok", body["token"])
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
	})
	server := newAPIServer(t, mux)

	c := New(server.URL, signedInStore(t))
	forgot, err := c.ForgotPassword(context.Background(), "e@x.com")
	require.NoError(t, err)
	assert.Equal(t, "tok", forgot.ResetToken)

	msg, err := c.ResetPassword(context.Background(), forgot.ResetToken, "NewSecret1")
	require.NoError(t, err)
	assert.Equal(t, "Password reset successful", msg)
}

func TestID_UnmarshalJSON(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"01HZX","b":7,"c":null}`), &v))
	assert.Equal(t, ID("01HZX"), v.A)
	assert.Equal(t, ID("7"), v.B)
	assert.Equal(t, ID(""), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}
