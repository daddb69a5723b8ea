package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theleywin/Backend-Meme-Nest/src/models"
	"github.com/theleywin/Backend-Meme-Nest/src/search"
	"github.com/theleywin/Backend-Meme-Nest/src/storage"
	"github.com/theleywin/Backend-Meme-Nest/src/tags"
)

const maxTitleLength = 200

// PostInput is an upload from the post creation form.
type PostInput struct {
	Title   string
	Content string
	Tags    string
	Media   *Upload
}

// PostUpdate changes the fields that are not nil.
type PostUpdate struct {
	Title   *string
	Content *string
}

type PostService struct {
	db         *gorm.DB
	index      search.Index
	storage    storage.Storage
	restricted []string
}

func NewPostService(db *gorm.DB, index search.Index, store storage.Storage, restricted []string) *PostService {
	return &PostService{db: db, index: index, storage: store, restricted: restricted}
}

// Create stores the media file, the post row and its index entry as one unit.
// If any step fails nothing is left behind.
func (s *PostService) Create(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.Media == nil || len(in.Media.Data) == 0 {
		return nil, fmt.Errorf("%w: a media file is required", ErrValidation)
	}
	ext, err := storage.MediaExt(in.Media.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	tagList, err := tags.FromInput(in.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	post := models.Post{
		UserID:            authorID,
		Title:             title,
		SearchableContent: strings.TrimSpace(in.Content),
		Tags:              tags.Join(tagList),
	}
	var saved string

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		path, err := s.storage.Save(ctx, in.Media.Data, storage.NewStem("post", post.ID), ext)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		saved = path
		post.Source = path
		if err := tx.Model(&post).Update("source", path).Error; err != nil {
			return err
		}

		return s.index.Put(tx, search.Document{ID: post.ID, Title: post.Title, Body: post.SearchableContent})
	})
	if err != nil {
		if saved != "" {
			s.discard(ctx, saved)
		}
		return nil, err
	}

	return s.load(s.db.WithContext(ctx), post.ID)
}

// Get returns a post the viewer is allowed to see.
func (s *PostService) Get(ctx context.Context, id uint, viewer *Viewer) (*models.Post, error) {
	post, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if viewer == nil && s.isRestricted(post.Tags) {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	return post, nil
}

// List is the newest-first feed.
func (s *PostService) List(ctx context.Context, page Page, viewer *Viewer) ([]models.Post, int64, error) {
	return s.find(ctx, nil, page, viewer)
}

// ListByUser is the feed of a single author, looked up by username.
func (s *PostService) ListByUser(ctx context.Context, username string, page Page, viewer *Viewer) ([]models.Post, int64, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("id").Where("LOWER(username) = ?", strings.ToLower(username)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	if err != nil {
		return nil, 0, err
	}

	return s.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ?", user.ID)
	}, page, viewer)
}

// Search applies the tag filters and intersects them with the free text matches.
// A zero page limit returns every match.
func (s *PostService) Search(ctx context.Context, q SearchQuery, page Page, viewer *Viewer) ([]models.Post, int64, error) {
	var matched []uint
	if len(q.Terms) > 0 {
		ids, err := s.index.Match(s.db.WithContext(ctx), q.Terms)
		if err != nil {
			return nil, 0, err
		}
		if len(ids) == 0 {
			return []models.Post{}, 0, nil
		}
		matched = ids
	}

	return s.find(ctx, func(db *gorm.DB) *gorm.DB {
		for _, tag := range q.Include {
			db = db.Where(tagElementSQL, "%,"+likeEscape(tag)+",%")
		}
		for _, tag := range q.Exclude {
			db = db.Where("NOT "+tagElementSQL, "%,"+likeEscape(tag)+",%")
		}
		if matched != nil {
			db = db.Where("posts.id IN ?", matched)
		}
		return db
	}, page, viewer)
}

// ToggleTag adds tag to the post or removes it when present. Only the owner may do it.
func (s *PostService) ToggleTag(ctx context.Context, postID uint, tag string, requesterID uint) ([]string, error) {
	tag, err := tags.Normalize(tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var result []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.loadForUpdate(tx, postID, requesterID)
		if err != nil {
			return err
		}
		result = tags.Toggle(post.TagList(), tag)
		return tx.Model(post).Update("tags", tags.Join(result)).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update changes title or searchable content and re-indexes the post in the same transaction.
func (s *PostService) Update(ctx context.Context, postID, requesterID uint, in PostUpdate) (*models.Post, error) {
	updates := map[string]interface{}{}
	if in.Title != nil {
		title, err := cleanTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if in.Content != nil {
		updates["searchable_content"] = strings.TrimSpace(*in.Content)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.loadForUpdate(tx, postID, requesterID)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(post).Updates(updates).Error; err != nil {
			return err
		}
		if in.Title != nil {
			post.Title = updates["title"].(string)
		}
		if in.Content != nil {
			post.SearchableContent = updates["searchable_content"].(string)
		}
		return s.index.Put(tx, search.Document{ID: post.ID, Title: post.Title, Body: post.SearchableContent})
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), postID)
}

// Delete removes the post with its comments, reactions, index entry and media files.
func (s *PostService) Delete(ctx context.Context, postID, requesterID uint) error {
	var files []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.loadForUpdate(tx, postID, requesterID)
		if err != nil {
			return err
		}
		if post.Source != "" {
			files = append(files, post.Source)
		}

		var attachments []string
		err = tx.Model(&models.Comment{}).
			Where("post_id = ? AND attachment <> ''", postID).
			Pluck("attachment", &attachments).Error
		if err != nil {
			return err
		}
		files = append(files, attachments...)

		if err := s.index.Remove(tx, postID); err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		s.discard(ctx, f)
	}
	return nil
}

// Matches "cat" in "cat,dog" but not in "catgirl".
const tagElementSQL = "(',' || posts.tags || ',') LIKE ? ESCAPE '\\'"

func (s *PostService) find(ctx context.Context, filter func(*gorm.DB) *gorm.DB, page Page, viewer *Viewer) ([]models.Post, int64, error) {
	page = page.normalized()

	query := s.db.WithContext(ctx).Model(&models.Post{}).Scopes(s.visibleTo(viewer))
	if filter != nil {
		query = query.Scopes(filter)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []models.Post{}
	list := query.Preload("User").Order("posts.created_at DESC, posts.id DESC")
	if page.Limit > 0 {
		list = list.Limit(page.Limit).Offset(page.Offset)
	}
	if err := list.Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// visibleTo hides restricted posts from anonymous viewers.
func (s *PostService) visibleTo(viewer *Viewer) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewer != nil {
			return db
		}
		for _, tag := range s.restricted {
			db = db.Where("posts.tags NOT LIKE ? ESCAPE '\\'", "%"+likeEscape(tag)+"%")
		}
		return db
	}
}

func (s *PostService) isRestricted(stored string) bool {
	for _, tag := range s.restricted {
		if strings.Contains(stored, tag) {
			return true
		}
	}
	return false
}

func (s *PostService) load(db *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	err := db.Preload("User").Where("id = ?", id).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// loadForUpdate locks the post and checks ownership. Missing posts are
// reported before ownership so the two errors stay distinct.
func (s *PostService) loadForUpdate(tx *gorm.DB, id, requesterID uint) (*models.Post, error) {
	var post models.Post
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if post.UserID != requesterID {
		return nil, fmt.Errorf("%w: not the owner of post %d", ErrPermissionDenied, id)
	}
	return &post, nil
}

func (s *PostService) discard(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		log.Printf("Error deleting media %s: %v", path, err)
	}
}

func cleanTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return "", fmt.Errorf("%w: title must have 1-%d characters", ErrValidation, maxTitleLength)
	}
	return title, nil
}

func likeEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
