package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/theleywin/Backend-Meme-Nest/src/config"
	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/models"
	"github.com/theleywin/Backend-Meme-Nest/src/search"
	"github.com/theleywin/Backend-Meme-Nest/src/storage"
)

type testEnv struct {
	db    *gorm.DB
	dir   string
	store storage.Storage
	svc   *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		DBDriver:       "sqlite",
		DBPath:         "file:" + name + "?mode=memory&cache=shared",
		DBLogLevel:     "silent",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		RestrictedTags: []string{"nsfw"},
	}

	db, err := lib.ConnectDB(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	index := search.ForDialect(cfg.DBDriver)
	if err := lib.AutoMigrate(db, index); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	dir := t.TempDir()
	store, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	return &testEnv{
		db:    db,
		dir:   dir,
		store: store,
		svc:   New(cfg, db, index, store, NewGormNotificationStore(db)),
	}
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", Password: "x"}
	if err := e.db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &u
}

func (e *testEnv) post(t *testing.T, owner *models.User, title, tagInput string) *models.Post {
	t.Helper()
	p, err := e.svc.Posts.Create(context.Background(), owner.ID, PostInput{
		Title:   title,
		Content: title,
		Tags:    tagInput,
		Media:   &Upload{Filename: "meme.png", Data: []byte("png")},
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func (e *testEnv) comment(t *testing.T, author *models.User, postID uint, parentID *uint) *models.Comment {
	t.Helper()
	c, err := e.svc.Comments.Create(context.Background(), author.ID, CommentInput{
		PostID:   postID,
		ParentID: parentID,
		Content:  "first!",
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func ptr[T any](v T) *T { return &v }

type failingStorage struct{}

func (failingStorage) Save(context.Context, []byte, string, string) (string, error) {
	return "", errors.New("disk full")
}

func (failingStorage) Delete(context.Context, string) error { return nil }
