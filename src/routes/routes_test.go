package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Meme-Nest/src/config"
	"github.com/theleywin/Backend-Meme-Nest/src/controllers"
	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/search"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
	"github.com/theleywin/Backend-Meme-Nest/src/storage"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		DBDriver:       "sqlite",
		DBPath:         "file:" + t.Name() + "?mode=memory&cache=shared",
		DBLogLevel:     "silent",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		RestrictedTags: []string{"nsfw"},
	}
	db, err := lib.ConnectDB(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	index := search.ForDialect(cfg.DBDriver)
	if err := lib.AutoMigrate(db, index); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	svc := services.New(cfg, db, index, store, services.NewGormNotificationStore(db))
	app := fiber.New(fiber.Config{
		ErrorHandler:                 controllers.ErrorHandler,
		DisablePreParseMultipartForm: true,
	})
	Setup(app, controllers.New(svc, cfg), svc.Auth)
	return app
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func (c client) do(method, path, token string, body io.Reader, contentType string, out interface{}) int {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c client) json(method, path, token string, payload interface{}, out interface{}) int {
	c.t.Helper()
	raw, _ := json.Marshal(payload)
	return c.do(method, path, token, bytes.NewReader(raw), fiber.MIMEApplicationJSON, out)
}

func (c client) signup(username string) string {
	c.t.Helper()
	var res struct {
		Token string `json:"token"`
	}
	status := c.json("POST", "/api/v1/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	}, &res)
	if status != http.StatusCreated || res.Token == "" {
		c.t.Fatalf("signup %s: status %d", username, status)
	}
	return res.Token
}

func (c client) createPost(token, title, tagInput string) uint {
	c.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("title", title)
	w.WriteField("tags", tagInput)
	part, _ := w.CreateFormFile("media", "meme.png")
	part.Write([]byte("png bytes"))
	w.Close()

	var post struct {
		ID     uint     `json:"_id"`
		Source string   `json:"source"`
		Tags   []string `json:"tags"`
	}
	status := c.do("POST", "/api/v1/posts", token, &buf, w.FormDataContentType(), &post)
	if status != http.StatusCreated || post.ID == 0 || !strings.HasPrefix(post.Source, "/uploads/") {
		c.t.Fatalf("create post: status %d, %+v", status, post)
	}
	return post.ID
}

type pageBody struct {
	Posts []struct {
		ID           uint    `json:"_id"`
		Likes        int     `json:"likes"`
		UserReaction *string `json:"userReaction"`
	} `json:"posts"`
	Total int64 `json:"total"`
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	c := client{t: t, app: newApp(t)}
	alice := c.signup("alice")
	bob := c.signup("bob")

	postID := c.createPost(alice, "cat meme", "cat")
	c.createPost(alice, "spicy meme", "nsfw")
	base := "/api/v1/posts/" + itoa(postID)

	var feed pageBody
	if status := c.do("GET", "/api/v1/posts", "", nil, "", &feed); status != http.StatusOK || feed.Total != 1 {
		t.Fatalf("anonymous feed: %d %+v", status, feed)
	}
	if status := c.do("GET", "/api/v1/posts", bob, nil, "", &feed); status != http.StatusOK || feed.Total != 2 {
		t.Fatalf("logged in feed: %d %+v", status, feed)
	}

	var reaction struct {
		Likes        int     `json:"likes"`
		UserReaction *string `json:"userReaction"`
	}
	c.json("POST", base+"/react", bob, map[string]string{"kind": "like"}, &reaction)
	if reaction.Likes != 1 || reaction.UserReaction == nil || *reaction.UserReaction != "like" {
		t.Fatalf("like: %+v", reaction)
	}
	c.do("GET", "/api/v1/posts", bob, nil, "", &feed)
	for _, p := range feed.Posts {
		if p.ID == postID && (p.UserReaction == nil || *p.UserReaction != "like") {
			t.Fatalf("feed should show bob's like: %+v", p)
		}
	}
	c.json("POST", base+"/react", bob, map[string]string{"kind": "like"}, &reaction)
	if reaction.Likes != 0 || reaction.UserReaction != nil {
		t.Fatalf("second like should undo: %+v", reaction)
	}
	if status := c.json("POST", base+"/react", "", map[string]string{"kind": "like"}, nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous reaction: %d", status)
	}

	var top struct {
		ID uint `json:"_id"`
	}
	if status := c.json("POST", base+"/comments", bob, map[string]string{"content": "lol"}, &top); status != http.StatusCreated {
		t.Fatalf("comment: %d", status)
	}
	if status := c.json("POST", base+"/comments", alice, map[string]interface{}{"content": "thanks", "parent_id": top.ID}, nil); status != http.StatusCreated {
		t.Fatalf("reply: %d", status)
	}
	var tree struct {
		Comments []struct {
			ID      uint `json:"_id"`
			Replies []struct {
				Content string `json:"content"`
			} `json:"replies"`
		} `json:"comments"`
		Count int `json:"count"`
	}
	c.do("GET", base+"/comments", "", nil, "", &tree)
	if tree.Count != 2 || len(tree.Comments) != 1 || len(tree.Comments[0].Replies) != 1 || tree.Comments[0].Replies[0].Content != "thanks" {
		t.Fatalf("unexpected tree %+v", tree)
	}

	if status := c.json("POST", base+"/tags", bob, map[string]string{"tag": "dog"}, nil); status != http.StatusForbidden {
		t.Fatalf("non owner toggle: %d", status)
	}
	if status := c.json("POST", "/api/v1/posts/999/tags", alice, map[string]string{"tag": "dog"}, nil); status != http.StatusNotFound {
		t.Fatalf("missing post toggle: %d", status)
	}
	var toggled struct {
		Tags []string `json:"tags"`
	}
	c.json("POST", base+"/tags", alice, map[string]string{"tag": "dog"}, &toggled)
	if len(toggled.Tags) != 2 {
		t.Fatalf("toggle: %+v", toggled)
	}

	var found pageBody
	c.do("GET", "/api/v1/posts/search?q="+url.QueryEscape("#cat -dog")+"&limit=0", "", nil, "", &found)
	if found.Total != 0 {
		t.Fatalf("excluded tag still matched: %+v", found)
	}
	c.do("GET", "/api/v1/posts/search?q="+url.QueryEscape("#cat #dog"), "", nil, "", &found)
	if found.Total != 1 || found.Posts[0].ID != postID {
		t.Fatalf("include search: %+v", found)
	}
	if status := c.do("GET", "/api/v1/posts/search?q="+url.QueryEscape(`"open`), "", nil, "", nil); status != http.StatusBadRequest {
		t.Fatalf("malformed search: %d", status)
	}

	var notes []struct {
		Type string `json:"type"`
	}
	c.do("GET", "/api/v1/notifications", bob, nil, "", &notes)
	if len(notes) != 1 || notes[0].Type != "reply" {
		t.Fatalf("bob should have a reply notification: %+v", notes)
	}

	if status := c.do("DELETE", base, bob, nil, "", nil); status != http.StatusForbidden {
		t.Fatalf("non owner delete: %d", status)
	}
	if status := c.do("DELETE", base, alice, nil, "", nil); status != http.StatusOK {
		t.Fatalf("owner delete: %d", status)
	}
	if status := c.do("GET", base, alice, nil, "", nil); status != http.StatusNotFound {
		t.Fatalf("deleted post: %d", status)
	}
	if status := c.do("GET", "/api/v1/posts/abc", "", nil, "", nil); status != http.StatusBadRequest {
		t.Fatalf("bad id: %d", status)
	}
}

func TestAuthAndProfileOverHTTP(t *testing.T) {
	c := client{t: t, app: newApp(t)}
	token := c.signup("pepe")

	if status := c.json("POST", "/api/v1/auth/signup", "", map[string]string{
		"username": "PEPE", "email": "x@example.com", "password": "secret1",
	}, nil); status != http.StatusConflict {
		t.Fatalf("duplicate signup: %d", status)
	}
	if status := c.json("POST", "/api/v1/auth/login", "", map[string]string{"username": "pepe", "password": "nope"}, nil); status != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", status)
	}

	var me struct {
		ID       uint   `json:"_id"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if status := c.do("GET", "/api/v1/auth/me", token, nil, "", &me); status != http.StatusOK || me.Username != "pepe" || me.Password != "" {
		t.Fatalf("me: %d %+v", status, me)
	}

	var prefs struct {
		AutoplayDesktop bool `json:"autoplayDesktop"`
		AutoplayMobile  bool `json:"autoplayMobile"`
	}
	c.json("PUT", "/api/v1/users/preferences", token, map[string]bool{"autoplayMobile": true}, &prefs)
	if !prefs.AutoplayDesktop || !prefs.AutoplayMobile {
		t.Fatalf("preferences: %+v", prefs)
	}

	c.createPost(token, "first", "")
	var profile struct {
		Username  string `json:"username"`
		PostCount int64  `json:"postCount"`
	}
	if status := c.do("GET", "/api/v1/users/PEPE", "", nil, "", &profile); status != http.StatusOK || profile.PostCount != 1 {
		t.Fatalf("profile: %d %+v", status, profile)
	}
	var posts pageBody
	c.do("GET", "/api/v1/users/pepe/posts", "", nil, "", &posts)
	if posts.Total != 1 {
		t.Fatalf("user posts: %+v", posts)
	}
	if status := c.do("GET", "/api/v1/users/ghost", "", nil, "", nil); status != http.StatusNotFound {
		t.Fatalf("missing profile: %d", status)
	}
}

func TestUploadErrorsOverHTTP(t *testing.T) {
	c := client{t: t, app: newApp(t)}
	token := c.signup("uploader")

	var res struct {
		Message string `json:"message"`
	}

	// Sin archivo: el servicio exige el media
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("title", "no media")
	w.Close()
	status := c.do("POST", "/api/v1/posts", token, &buf, w.FormDataContentType(), &res)
	if status != http.StatusBadRequest || !strings.Contains(res.Message, "media file is required") {
		t.Fatalf("missing media: %d %q", status, res.Message)
	}

	// Cuerpo multipart truncado: no debe confundirse con "sin archivo"
	broken := "--xyz\r\nContent-Disposition: form-data; name=\"media\"; filename=\"a.png\"\r\n\r\ntrunc"
	res.Message = ""
	status = c.do("POST", "/api/v1/posts", token, strings.NewReader(broken), "multipart/form-data; boundary=xyz", &res)
	if status != http.StatusBadRequest || !strings.Contains(res.Message, "multipart") || strings.Contains(res.Message, "media file is required") {
		t.Fatalf("broken multipart: %d %q", status, res.Message)
	}

	// Comentario en JSON sin adjunto sigue funcionando
	postID := c.createPost(token, "with media", "")
	if status := c.json("POST", "/api/v1/posts/"+itoa(postID)+"/comments", token, map[string]string{"content": "hola"}, nil); status != http.StatusCreated {
		t.Fatalf("json comment without attachment: %d", status)
	}

	res.Message = ""
	status = c.do("POST", "/api/v1/posts/"+itoa(postID)+"/comments", token, strings.NewReader("{"), fiber.MIMEApplicationJSON, &res)
	if status != http.StatusBadRequest || res.Message != "Datos inválidos" {
		t.Fatalf("malformed body: %d %q", status, res.Message)
	}
	res.Message = ""
	if status := c.do("DELETE", "/api/v1/posts/"+itoa(postID), token, nil, "", &res); status != http.StatusOK || res.Message != "Publicación eliminada correctamente" {
		t.Fatalf("delete post: %d %q", status, res.Message)
	}
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
