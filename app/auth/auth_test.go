package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/middleware"
	"atb/news-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubMailer struct {
	fail bool
	to   string
	body string
}

func (m *stubMailer) Send(to, subject, body string) error {
	if m.fail {
		return errors.New("smtp down")
	}

	m.to = to
	m.body = body
	return nil
}

type testEnv struct {
	deps   *internal.Deps
	router *gin.Engine
	mail   *stubMailer
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	viper.Set("jwt.cookie_expires_hours", 24)
	viper.Set("host.ssl.enabled", false)
	viper.Set("host.domain", "example.com")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.News{}, &model.Comment{}))

	mail := &stubMailer{}

	d := &internal.Deps{
		DB:        db,
		Tokens:    security.NewTokenMaker("test-secret", time.Hour),
		Passwords: security.New(),
		Mail:      mail,
	}

	r := gin.New()
	r.Use(middleware.NewErrorHandler())

	r.POST("/signup", func(c *gin.Context) { Signup(c, d) })
	r.POST("/login", func(c *gin.Context) { Login(c, d) })
	r.GET("/logout", Logout)
	r.POST("/forgotPassword", func(c *gin.Context) { ForgotPassword(c, d) })
	r.PATCH("/resetPassword/:token", func(c *gin.Context) { ResetPassword(c, d) })

	protect := middleware.NewProtectMiddleware(d)
	r.PATCH("/updateMyPassword", protect, func(c *gin.Context) { UpdatePassword(c, d) })
	r.GET("/protected", protect, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	return &testEnv{deps: d, router: r, mail: mail}
}

func (e *testEnv) do(t *testing.T, method, target, contentType, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	} else {
		rd = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, rd)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) signup(t *testing.T, name, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("name", name)
	form.Set("email", email)
	form.Set("password", password)
	form.Set("passwordConfirm", password)

	return e.do(t, http.MethodPost, "/signup", "application/x-www-form-urlencoded", form.Encode(), nil)
}

func (e *testEnv) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(gin.H{"email": email, "password": password})
	return e.do(t, http.MethodPost, "/login", "application/json", string(body), nil)
}

func TestSignup(t *testing.T) {
	e := setupEnv(t)

	w := e.signup(t, "Jane Doe", "jane@example.com", "hunter22!")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Status string `json:"status"`
		Token  string `json:"token"`
		Data   struct {
			User model.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.Data.User.ID)
	assert.Equal(t, "jane@example.com", resp.Data.User.Email)
	assert.Equal(t, model.RoleUser, resp.Data.User.Role)
	assert.Equal(t, model.DefaultUserPhoto.URL, resp.Data.User.Photo.URL)

	// The password hash must never leave the server
	assert.NotContains(t, w.Body.String(), "hunter22!")
	assert.NotContains(t, w.Body.String(), "argon2id")
	assert.NotContains(t, strings.ToLower(w.Body.String()), `"password"`)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := setupEnv(t)

	w := e.signup(t, "Jane Doe", "jane@example.com", "hunter22!")
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.signup(t, "Other Jane", "Jane@Example.com", "hunter22!")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupValidation(t *testing.T) {
	e := setupEnv(t)

	// Bad email
	w := e.signup(t, "Jane Doe", "not-an-email", "hunter22!")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Short password
	w = e.signup(t, "Jane Doe", "jane@example.com", "short")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Mismatched confirmation
	form := url.Values{}
	form.Set("name", "Jane Doe")
	form.Set("email", "jane@example.com")
	form.Set("password", "hunter22!")
	form.Set("passwordConfirm", "different1!")

	w = e.do(t, http.MethodPost, "/signup", "application/x-www-form-urlencoded", form.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Jane Doe", "jane@example.com", "hunter22!")

	w := e.login(t, "jane@example.com", "hunter22!")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"token"`)

	// Wrong password and unknown user read the same
	w = e.login(t, "jane@example.com", "wrong-password")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect email or password")

	w = e.login(t, "nobody@example.com", "hunter22!")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect email or password")

	w = e.login(t, "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please provide email and password!")
}

func TestProtect(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Jane Doe", "jane@example.com", "hunter22!")

	// No token at all
	w := e.do(t, http.MethodGet, "/protected", "", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "You are not logged in! Please login to get access")

	// Expired token
	expired := security.NewTokenMaker("test-secret", -time.Hour)
	tok, err := expired.Issue("whoever")
	require.NoError(t, err)

	h := http.Header{}
	h.Set("Authorization", "Bearer "+tok)
	w = e.do(t, http.MethodGet, "/protected", "", "", h)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token for a vanished user
	tok, err = e.deps.Tokens.Issue("no-such-user")
	require.NoError(t, err)

	h.Set("Authorization", "Bearer "+tok)
	w = e.do(t, http.MethodGet, "/protected", "", "", h)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "The user belonging to this token no longer exists")

	// Valid session via the login token
	lw := e.login(t, "jane@example.com", "hunter22!")
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &resp))

	h.Set("Authorization", "Bearer "+resp.Token)
	w = e.do(t, http.MethodGet, "/protected", "", "", h)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectAfterPasswordChange(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Jane Doe", "jane@example.com", "hunter22!")

	lw := e.login(t, "jane@example.com", "hunter22!")
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &resp))

	// Move the change timestamp past the clock-skew window
	changed := time.Now().Add(2 * time.Second)
	require.NoError(t, e.deps.DB.Model(&model.User{}).
		Where("email = ?", "jane@example.com").
		Update("password_changed_at", changed).
		Error)

	h := http.Header{}
	h.Set("Authorization", "Bearer "+resp.Token)

	w := e.do(t, http.MethodGet, "/protected", "", "", h)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "User recently changed password! Please login again")
}

func TestForgotAndResetPassword(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Jane Doe", "jane@example.com", "hunter22!")

	// Unknown email
	body, _ := json.Marshal(gin.H{"email": "nobody@example.com"})
	w := e.do(t, http.MethodPost, "/forgotPassword", "application/json", string(body), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "There is no user with this email address")

	body, _ = json.Marshal(gin.H{"email": "jane@example.com"})
	w = e.do(t, http.MethodPost, "/forgotPassword", "application/json", string(body), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Token sent to email")
	assert.Equal(t, "jane@example.com", e.mail.to)

	// The raw token lives in the mailed URL, only its hash in the DB
	idx := strings.Index(e.mail.body, "/resetPassword/")
	require.NotEqual(t, -1, idx)
	raw := e.mail.body[idx+len("/resetPassword/"):]
	raw = strings.Fields(strings.TrimSuffix(raw, "."))[0]
	raw = strings.TrimSuffix(raw, ".")

	var user model.User
	require.NoError(t, e.deps.DB.Where("email = ?", "jane@example.com").First(&user).Error)
	assert.NotEmpty(t, user.PasswordResetToken)
	assert.NotEqual(t, raw, user.PasswordResetToken)
	assert.Equal(t, security.HashResetToken(raw), user.PasswordResetToken)

	// Bogus token
	body, _ = json.Marshal(gin.H{"password": "newpass123!", "passwordConfirm": "newpass123!"})
	w = e.do(t, http.MethodPatch, "/resetPassword/bogus", "application/json", string(body), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Token is invalid or has expired")

	// Real token
	w = e.do(t, http.MethodPatch, "/resetPassword/"+raw, "application/json", string(body), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Token is single use, the stored hash was cleared
	require.NoError(t, e.deps.DB.Where("email = ?", "jane@example.com").First(&user).Error)
	assert.Empty(t, user.PasswordResetToken)
	require.NotNil(t, user.PasswordChangedAt)

	// Old password is gone, new one works
	w = e.login(t, "jane@example.com", "hunter22!")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.login(t, "jane@example.com", "newpass123!")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Jane Doe", "jane@example.com", "hunter22!")

	body, _ := json.Marshal(gin.H{"email": "jane@example.com"})
	w := e.do(t, http.MethodPost, "/forgotPassword", "application/json", string(body), nil)
	require.Equal(t, http.StatusOK, w.Code)

	idx := strings.Index(e.mail.body, "/resetPassword/")
	require.NotEqual(t, -1, idx)
	raw := strings.TrimSuffix(strings.Fields(e.mail.body[idx+len("/resetPassword/"):])[0], ".")

	// Push the stored expiry into the past; the token hash still matches
	require.NoError(t, e.deps.DB.Model(&model.User{}).
		Where("email = ?", "jane@example.com").
		Update("password_reset_expires", time.Now().Add(-time.Minute)).
		Error)

	body, _ = json.Marshal(gin.H{"password": "newpass123!", "passwordConfirm": "newpass123!"})
	w = e.do(t, http.MethodPatch, "/resetPassword/"+raw, "application/json", string(body), nil)

	// Expired reads exactly like unknown
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Token is invalid or has expired")

	// And the old password still works
	w = e.login(t, "jane@example.com", "hunter22!")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestForgotPasswordMailFailureRollsBack(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Jane Doe", "jane@example.com", "hunter22!")
	e.mail.fail = true

	body, _ := json.Marshal(gin.H{"email": "jane@example.com"})
	w := e.do(t, http.MethodPost, "/forgotPassword", "application/json", string(body), nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "There was an error sending the email. Try again later!")

	var user model.User
	require.NoError(t, e.deps.DB.Where("email = ?", "jane@example.com").First(&user).Error)
	assert.Empty(t, user.PasswordResetToken)
	assert.Nil(t, user.PasswordResetExpires)
}

func TestUpdatePassword(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Jane Doe", "jane@example.com", "hunter22!")

	lw := e.login(t, "jane@example.com", "hunter22!")
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &resp))

	h := http.Header{}
	h.Set("Authorization", "Bearer "+resp.Token)

	body, _ := json.Marshal(gin.H{
		"passwordCurrent": "not-my-password",
		"password":        "newpass123!",
		"passwordConfirm": "newpass123!",
	})
	w := e.do(t, http.MethodPatch, "/updateMyPassword", "application/json", string(body), h)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Your current password is wrong")

	body, _ = json.Marshal(gin.H{
		"passwordCurrent": "hunter22!",
		"password":        "newpass123!",
		"passwordConfirm": "newpass123!",
	})
	w = e.do(t, http.MethodPatch, "/updateMyPassword", "application/json", string(body), h)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.login(t, "jane@example.com", "newpass123!")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, http.MethodGet, "/logout", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.Equal(t, "loggedout", cookies[0].Value)
	assert.LessOrEqual(t, cookies[0].MaxAge, 10)
}
