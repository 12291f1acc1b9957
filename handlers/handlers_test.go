package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laughschool/board"
	"laughschool/config"
	"laughschool/handlers"
	"laughschool/ledger"
	"laughschool/media"
	"laughschool/middleware"
	"laughschool/models"
	"laughschool/routes"
	"laughschool/store"
)

const adminPassword = "LAUGHSCHOOLSERVER2025"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	dir := t.TempDir()

	st, err := store.NewFileStore(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
	lg, err := ledger.NewFileLedger(filepath.Join(dir, "votes.json"))
	require.NoError(t, err)
	md, err := media.NewLocalStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	cfg := config.Config{
		Port:           "8080",
		AdminPassword:  adminPassword,
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxUploadBytes: 1 << 20,
		RateLimit:      1000,
		RateWindow:     time.Minute,
	}

	h, err := handlers.New(board.New(st, lg, md), cfg)
	require.NoError(t, err)
	return routes.Setup(cfg, h, md.Dir())
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	cookies []*http.Cookie
}

func do(t *testing.T, router *gin.Engine, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(r.method, r.path, body)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func adminToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := do(t, router, request{method: "POST", path: "/api/admin/login", body: gin.H{"password": adminPassword}})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createPoll(t *testing.T, router *gin.Engine, options []string) models.Item {
	t.Helper()
	w := do(t, router, request{method: "POST", path: "/api/posts/poll", body: gin.H{
		"title":   "Best?",
		"options": options,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.Item
	decode(t, w, &item)
	return item
}

func uploadPNG(t *testing.T, router *gin.Engine, title string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("caption", "classic"))
	part, err := mw.CreateFormFile("media", "meme.png")
	require.NoError(t, err)
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 32)...)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/posts/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestApp(t)

	w := do(t, router, request{method: "GET", path: "/api/health"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadThenModerationFlow(t *testing.T) {
	router := newTestApp(t)

	w := uploadPNG(t, router, "When CI passes")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.Item
	decode(t, w, &item)
	assert.Equal(t, models.TypeImage, item.Type)
	assert.False(t, item.Approved)
	assert.Equal(t, "classic", item.Media.Caption)

	// Pending items stay off the public feed...
	w = do(t, router, request{method: "GET", path: "/api/posts"})
	require.Equal(t, http.StatusOK, w.Code)
	var feed []models.Item
	decode(t, w, &feed)
	assert.Empty(t, feed)

	// ...but are reachable by raw id.
	w = do(t, router, request{method: "GET", path: "/api/posts/" + item.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	// Approval puts them on the feed.
	token := adminToken(t, router)
	w = do(t, router, request{method: "PATCH", path: "/api/posts/" + item.ID + "/approval",
		body: gin.H{"approved": true}, token: token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, request{method: "GET", path: "/api/posts"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, item.ID, feed[0].ID)
}

func TestUploadWithoutTitle(t *testing.T) {
	router := newTestApp(t)

	w := uploadPNG(t, router, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := adminToken(t, router)
	w = do(t, router, request{method: "GET", path: "/api/admin/posts", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.Item
	decode(t, w, &items)
	assert.Empty(t, items, "no item created on validation failure")
}

func TestUploadRejectsNonMedia(t *testing.T) {
	router := newTestApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "sneaky"))
	part, err := mw.CreateFormFile("media", "notes.txt")
	require.NoError(t, err)
	fmt.Fprint(part, "plain text pretending to be a meme")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/posts/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePollTooFewOptions(t *testing.T) {
	router := newTestApp(t)

	w := do(t, router, request{method: "POST", path: "/api/posts/poll", body: gin.H{
		"title":   "Best?",
		"options": []string{"only one", "  "},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReactEndpoint(t *testing.T) {
	router := newTestApp(t)
	item := createPoll(t, router, []string{"A", "B"})

	for want := 1; want <= 2; want++ {
		w := do(t, router, request{method: "POST", path: "/api/posts/" + item.ID + "/react"})
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Laughs int `json:"laughs"`
		}
		decode(t, w, &resp)
		assert.Equal(t, want, resp.Laughs)
	}

	w := do(t, router, request{method: "POST", path: "/api/posts/missing/react"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoteDedupByViewerCookie(t *testing.T) {
	router := newTestApp(t)
	item := createPoll(t, router, []string{"A", "B"})

	w := do(t, router, request{method: "POST", path: "/api/posts/" + item.ID + "/vote",
		body: gin.H{"optionIndex": 0}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "first request issues a viewer cookie")

	var resp struct {
		Post        models.Item `json:"post"`
		Counted     bool        `json:"counted"`
		Percentages []int       `json:"percentages"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Counted)
	assert.Equal(t, 1, resp.Post.Poll.TotalVotes)
	assert.Equal(t, []int{100, 0}, resp.Percentages)

	// Same viewer (same cookie) voting again changes nothing.
	w = do(t, router, request{method: "POST", path: "/api/posts/" + item.ID + "/vote",
		body: gin.H{"optionIndex": 0}, cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.False(t, resp.Counted)
	assert.Equal(t, 1, resp.Post.Poll.TotalVotes)

	// A fresh client (no cookie) counts as a new viewer.
	w = do(t, router, request{method: "POST", path: "/api/posts/" + item.ID + "/vote",
		body: gin.H{"optionIndex": 1}})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.True(t, resp.Counted)
	assert.Equal(t, 2, resp.Post.Poll.TotalVotes)
}

func TestVoteErrors(t *testing.T) {
	router := newTestApp(t)
	item := createPoll(t, router, []string{"A", "B"})

	w := do(t, router, request{method: "POST", path: "/api/posts/" + item.ID + "/vote",
		body: gin.H{"optionIndex": 5}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, request{method: "POST", path: "/api/posts/missing/vote",
		body: gin.H{"optionIndex": 0}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	router := newTestApp(t)

	w := do(t, router, request{method: "POST", path: "/api/admin/login",
		body: gin.H{"password": "guess"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestApp(t)
	item := createPoll(t, router, []string{"A", "B"})

	w := do(t, router, request{method: "GET", path: "/api/admin/posts"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, request{method: "DELETE", path: "/api/posts/" + item.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, request{method: "POST", path: "/api/posts/" + item.ID + "/votes/reset"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminEditAndResetVotes(t *testing.T) {
	router := newTestApp(t)
	item := createPoll(t, router, []string{"A", "B"})
	token := adminToken(t, router)

	w := do(t, router, request{method: "POST", path: "/api/posts/" + item.ID + "/vote",
		body: gin.H{"optionIndex": 0}})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, request{method: "PATCH", path: "/api/posts/" + item.ID,
		body: gin.H{"title": "Renamed", "options": []string{"Alpha", "Beta"}}, token: token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var edited models.Item
	decode(t, w, &edited)
	assert.Equal(t, "Renamed", edited.Title)
	assert.Equal(t, "Alpha", edited.Poll.Options[0].Text)
	assert.Equal(t, 1, edited.Poll.Options[0].Votes, "editing texts keeps vote counts")

	w = do(t, router, request{method: "POST", path: "/api/posts/" + item.ID + "/votes/reset", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	var reset models.Item
	decode(t, w, &reset)
	assert.Zero(t, reset.Poll.TotalVotes)
	assert.Len(t, reset.Poll.Options, 2)
}

func TestAdminDeleteIsIdempotent(t *testing.T) {
	router := newTestApp(t)
	item := createPoll(t, router, []string{"A", "B"})
	token := adminToken(t, router)

	w := do(t, router, request{method: "DELETE", path: "/api/posts/" + item.ID, token: token})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, request{method: "DELETE", path: "/api/posts/" + item.ID, token: token})
	assert.Equal(t, http.StatusOK, w.Code, "deleting an absent id is a quiet success")

	w = do(t, router, request{method: "GET", path: "/api/posts/" + item.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestViewerCookieIsStable(t *testing.T) {
	router := newTestApp(t)

	w := do(t, router, request{method: "GET", path: "/api/posts"})
	require.Equal(t, http.StatusOK, w.Code)

	var viewer *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.ViewerCookie {
			viewer = c
		}
	}
	require.NotNil(t, viewer)
	assert.NotEmpty(t, viewer.Value)

	// A request that already carries the cookie doesn't get a new one.
	w = do(t, router, request{method: "GET", path: "/api/posts", cookies: []*http.Cookie{viewer}})
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, middleware.ViewerCookie, c.Name)
	}
}
