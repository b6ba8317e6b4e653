package handlers

import (
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEcho()
	users := newFakeUserRepo()
	h := NewAuthHandler(users, nil)

	c, rec := newJSONContext(e, http.MethodPost, "",
		`{"email":"Alice@Example.com","username":"alice","fullName":"Alice A","password":"secret1"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	// Emails are stored lowercased; the hash never leaves the server
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password")

	// The issued token carries the user's hex id
	claims := &models.JwtCustomClaims{}
	_, err := jwt.ParseWithClaims(body["token"].(string), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(h.jwtSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, user["id"], claims.UserID)

	// Login with the right password succeeds
	c, rec = newJSONContext(e, http.MethodPost, "",
		`{"email":"alice@example.com","password":"secret1"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Wrong password is a 401 with no credential detail
	c, _ = newJSONContext(e, http.MethodPost, "",
		`{"email":"alice@example.com","password":"wrong"}`)
	err = h.Login(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, httpErrorCode(t, err))
}

func TestRegisterConflicts(t *testing.T) {
	e := newTestEcho()
	users := newFakeUserRepo()
	h := NewAuthHandler(users, nil)

	users.add(&models.User{Email: "alice@example.com", Username: "alice"})

	c, _ := newJSONContext(e, http.MethodPost, "",
		`{"email":"alice@example.com","username":"other","fullName":"Other O","password":"secret1"}`)
	err := h.Register(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httpErrorCode(t, err))

	c, _ = newJSONContext(e, http.MethodPost, "",
		`{"email":"new@example.com","username":"alice","fullName":"New N","password":"secret1"}`)
	err = h.Register(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httpErrorCode(t, err))
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(newFakeUserRepo(), nil)

	c, _ := newJSONContext(e, http.MethodPost, "",
		`{"email":"not-an-email","username":"al","fullName":"A","password":"123"}`)
	err := h.Register(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
}

func TestLoginUnknownEmail(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(newFakeUserRepo(), nil)

	c, _ := newJSONContext(e, http.MethodPost, "",
		`{"email":"ghost@example.com","password":"whatever"}`)
	err := h.Login(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, httpErrorCode(t, err))
}

func TestFirebaseLoginUnconfigured(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(newFakeUserRepo(), nil)

	c, _ := newJSONContext(e, http.MethodPost, "", `{"idToken":"abc"}`)
	err := h.FirebaseLogin(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, httpErrorCode(t, err))
}

func TestRegisterHashesPassword(t *testing.T) {
	e := newTestEcho()
	users := newFakeUserRepo()
	h := NewAuthHandler(users, nil)

	c, _ := newJSONContext(e, http.MethodPost, "",
		`{"email":"bob@example.com","username":"bobby","fullName":"Bob B","password":"hunter22"}`)
	require.NoError(t, h.Register(c))

	stored, err := users.GetUserByEmail(nil, "bob@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))
}
