package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reliefnet/disaster-api/pkg/assist"
	"github.com/reliefnet/disaster-api/pkg/auth"
	"github.com/reliefnet/disaster-api/pkg/database"
	"github.com/reliefnet/disaster-api/pkg/directory"
	"github.com/reliefnet/disaster-api/pkg/models"
	"github.com/reliefnet/disaster-api/pkg/registry"
	"github.com/reliefnet/disaster-api/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost
}

type fakeResponder struct {
	reply string
	err   error
}

func (f fakeResponder) Reply(ctx context.Context, message string) (string, error) {
	return f.reply, f.err
}

func newTestServer(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	logger := zap.NewNop()
	s := store.New(db)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	h := &Handler{
		Registry:  registry.New(s, logger),
		Directory: directory.New(s, tokens, logger),
		Tokens:    tokens,
		Store:     s,
		Predictor: assist.NewPredictor("http://127.0.0.1:0"),
		Logger:    logger,
	}
	r := gin.New()
	h.Routes(r)
	return r, h
}

func do(r *gin.Engine, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEmergency(t *testing.T, w *httptest.ResponseRecorder) models.Emergency {
	t.Helper()
	var e models.Emergency
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestListEmergencies_EmptyArray(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(r, http.MethodGet, "/emergencies", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestEmergencyLifecycle(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(r, http.MethodPost, "/emergencies", gin.H{"title": "Fire", "description": "Building fire", "reporter": "u1"})
	require.Equal(t, http.StatusCreated, w.Code)
	e := decodeEmergency(t, w)
	assert.Equal(t, models.StatusPending, e.Status)
	assert.Equal(t, []string{}, e.Volunteers)
	assert.Contains(t, w.Body.String(), `"volunteers":[]`)

	w = do(r, http.MethodPost, "/emergencies/"+e.ID+"/accept", gin.H{"volunteerName": "Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	e = decodeEmergency(t, w)
	assert.Equal(t, models.StatusAccepted, e.Status)
	assert.Equal(t, []string{"Alice"}, e.Volunteers)

	w = do(r, http.MethodPost, "/emergencies/"+e.ID+"/accept", gin.H{"volunteerName": "Alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already accepted")

	w = do(r, http.MethodPost, "/emergencies/"+e.ID+"/accept", gin.H{"volunteerName": "Bob"})
	require.Equal(t, http.StatusOK, w.Code)
	e = decodeEmergency(t, w)
	assert.Equal(t, []string{"Alice", "Bob"}, e.Volunteers)
	assert.Equal(t, models.StatusAccepted, e.Status)

	w = do(r, http.MethodGet, "/emergencies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Emergency
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, []string{"Alice", "Bob"}, list[0].Volunteers)
}

func TestCreateEmergency_ValidationError(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(r, http.MethodPost, "/emergencies", gin.H{"title": "  ", "description": "d", "reporter": "u1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])

	w = do(r, http.MethodPost, "/emergencies", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateEmergency_LegacyUserField(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(r, http.MethodPost, "/api/emergency", gin.H{"title": "Flood", "description": "Street flooded", "user": "u9"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u9", decodeEmergency(t, w).Reporter)
}

func TestAcceptEmergency_UnknownID(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(r, http.MethodPost, "/emergencies/missing/accept", gin.H{"volunteerName": "Alice"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Emergency not found"}`, w.Body.String())
}

func TestLegacyAcceptAndDecline(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(r, http.MethodPost, "/emergencies", gin.H{"title": "Storm", "description": "Trees down", "reporter": "u1"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeEmergency(t, w).ID

	w = do(r, http.MethodPost, "/api/accept", gin.H{"emergencyId": id, "volunteer": "Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusAccepted, decodeEmergency(t, w).Status)

	w = do(r, http.MethodPost, "/api/decline", gin.H{"emergencyId": id, "volunteer": "Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	e := decodeEmergency(t, w)
	assert.Equal(t, models.StatusPending, e.Status)
	assert.Empty(t, e.Volunteers)

	w = do(r, http.MethodPost, "/emergencies/"+id+"/decline", gin.H{"volunteerName": "Alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/accept", gin.H{"emergencyId": id})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func registerAndLogin(t *testing.T, r *gin.Engine, role string) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/auth/register", gin.H{
		"role": role, "name": "Vera", "phoneNumber": "555-123-4567", "address": "1 Main St",
		"email": "vera@example.com", "password": "passw0rd!", "country": "NZ", "city": "Auckland", "pinCode": "10101",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "passw0rd!")

	w = do(r, http.MethodPost, "/api/auth/login", gin.H{"email": "vera@example.com", "password": "passw0rd!", "role": role})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	var cookieSet bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.Value == body.Token && c.HttpOnly {
			cookieSet = true
		}
	}
	assert.True(t, cookieSet)
	return body.Token
}

func TestAuthAndProfile(t *testing.T) {
	r, _ := newTestServer(t)
	token := registerAndLogin(t, r, "volunteer")

	w := do(r, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/profile", nil, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/profile", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"vera@example.com"`)

	w = do(r, http.MethodPut, "/api/profile", gin.H{"city": "Hamilton"}, "Cookie", "token="+token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPut, "/api/profile", gin.H{"password": "x", "role": "admin"}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password")

	w = do(r, http.MethodGet, "/api/profile", nil, "Authorization", "Bearer "+token)
	assert.Contains(t, w.Body.String(), `"city":"Hamilton"`)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	r, _ := newTestServer(t)
	registerAndLogin(t, r, "user")

	w := do(r, http.MethodPost, "/api/auth/login", gin.H{"email": "vera@example.com", "password": "nope1234!", "role": "user"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, w.Body.String())
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	r, _ := newTestServer(t)
	registerAndLogin(t, r, "agency")

	w := do(r, http.MethodPost, "/api/auth/register", gin.H{
		"role": "agency", "name": "Vera", "phoneNumber": "555-123-4567", "address": "1 Main St",
		"email": "VERA@example.com", "password": "passw0rd!", "country": "NZ", "city": "Auckland", "pinCode": "10101",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	r, h := newTestServer(t)
	userToken := registerAndLogin(t, r, "user")

	w := do(r, http.MethodGet, "/api/admin/accounts", nil, "Authorization", "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, auth.EnsureAdminExists(context.Background(), h.Store, zap.NewNop(), "Root", "root@relief.io", "admin123!"))
	w = do(r, http.MethodPost, "/api/auth/login", gin.H{"email": "root@relief.io", "password": "admin123!", "role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	w = do(r, http.MethodGet, "/api/admin/accounts?role=user", nil, "Authorization", "Bearer "+body.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var users map[string][]models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users["users"], 1)

	w = do(r, http.MethodGet, "/api/admin/accounts?role=pirate", nil, "Authorization", "Bearer "+body.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/admin/document", nil, "Authorization", "Bearer "+body.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc.Admins, 1)
	assert.Len(t, doc.Users, 1)
	assert.NotNil(t, doc.Emergencies)
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestLogout_ClearsCookie(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(r, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestPredict(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prediction":false}`))
	}))
	defer backend.Close()

	r, h := newTestServer(t)
	h.Predictor = assist.NewPredictor(backend.URL)

	w := do(r, http.MethodPost, "/api/predict", gin.H{"rainfall": 10})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prediction":false}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/predict", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	backend.Close()
	w = do(r, http.MethodPost, "/api/predict", gin.H{"rainfall": 10})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestChat(t *testing.T) {
	r, h := newTestServer(t)

	w := do(r, http.MethodPost, "/api/chat", gin.H{"message": "I lost my home"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h.Responder = fakeResponder{reply: "That sounds incredibly hard."}
	w = do(r, http.MethodPost, "/api/chat", gin.H{"message": "I lost my home"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response":"That sounds incredibly hard."}`, w.Body.String())

	h.Responder = fakeResponder{err: errors.New("quota")}
	w = do(r, http.MethodPost, "/api/chat", gin.H{"message": "hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(r, http.MethodPost, "/api/chat", gin.H{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
