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
	"github.com/theleywin/Backend-Meme-Nest/src/storage"
)

const maxCommentLength = 2000

// CommentInput is a new comment on PostID, optionally replying to ParentID.
type CommentInput struct {
	PostID     uint
	ParentID   *uint
	Content    string
	Attachment *Upload
}

type CommentService struct {
	db       *gorm.DB
	storage  storage.Storage
	notifier *NotificationService
}

func NewCommentService(db *gorm.DB, store storage.Storage, notifier *NotificationService) *CommentService {
	return &CommentService{db: db, storage: store, notifier: notifier}
}

// Tree loads every comment of postID and arranges it as a reply forest.
func (s *CommentService) Tree(ctx context.Context, postID uint) (*CommentTree, error) {
	db := s.db.WithContext(ctx)
	if err := postExists(db, postID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := db.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}

func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Preload("User").Where("id = ?", id).Take(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: comment %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Create adds a comment. A reply must point at a comment of the same post.
func (s *CommentService) Create(ctx context.Context, authorID uint, in CommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.Attachment == nil {
		return nil, fmt.Errorf("%w: comment needs content or an attachment", ErrValidation)
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment longer than %d characters", ErrValidation, maxCommentLength)
	}

	var ext string
	if in.Attachment != nil {
		var err error
		if ext, err = storage.MediaExt(in.Attachment.Filename); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	comment := models.Comment{
		PostID:   in.PostID,
		UserID:   authorID,
		ParentID: in.ParentID,
		Content:  content,
	}
	var (
		saved       string
		postOwner   uint
		parentOwner uint
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id, user_id").Where("id = ?", in.PostID).Take(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: post %d", ErrNotFound, in.PostID)
			}
			return err
		}
		postOwner = post.UserID

		if in.ParentID != nil {
			owner, err := validateParent(tx, in.PostID, *in.ParentID)
			if err != nil {
				return err
			}
			parentOwner = owner
		}

		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		if in.Attachment != nil {
			path, err := s.storage.Save(ctx, in.Attachment.Data, storage.NewStem("comment", comment.ID), ext)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrStorage, err)
			}
			saved = path
			comment.Attachment = path
			if err := tx.Model(&comment).Update("attachment", path).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if saved != "" {
			s.discard(ctx, saved)
		}
		return nil, err
	}

	s.notifyComment(ctx, &comment, postOwner, parentOwner)
	return s.Get(ctx, comment.ID)
}

// Update rewrites the text of a comment owned by requesterID.
func (s *CommentService) Update(ctx context.Context, id, requesterID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment must have 1-%d characters", ErrValidation, maxCommentLength)
	}

	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != requesterID {
		return nil, fmt.Errorf("%w: not the author of comment %d", ErrPermissionDenied, id)
	}

	if err := s.db.WithContext(ctx).Model(comment).Update("content", content).Error; err != nil {
		return nil, err
	}
	comment.Content = content
	return comment, nil
}

// Delete removes a comment and, through the foreign key, all replies below it.
func (s *CommentService) Delete(ctx context.Context, id, requesterID uint) error {
	var files []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&comment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: comment %d", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		if comment.UserID != requesterID {
			return fmt.Errorf("%w: not the author of comment %d", ErrPermissionDenied, id)
		}

		// Los adjuntos de las respuestas se leen en la misma transacción que el borrado
		var onPost []models.Comment
		err = tx.Select("id, parent_id, attachment").
			Where("post_id = ?", comment.PostID).
			Find(&onPost).Error
		if err != nil {
			return err
		}
		if comment.Attachment != "" {
			files = append(files, comment.Attachment)
		}
		for _, reply := range BuildCommentTree(onPost).Descendants(id) {
			if reply.Attachment != "" {
				files = append(files, reply.Attachment)
			}
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		s.discard(ctx, f)
	}
	return nil
}

func (s *CommentService) discard(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		log.Printf("Error deleting media %s: %v", path, err)
	}
}

func (s *CommentService) notifyComment(ctx context.Context, comment *models.Comment, postOwner, parentOwner uint) {
	if s.notifier == nil {
		return
	}
	id := comment.ID
	n := models.Notification{
		RecipientID: postOwner,
		ActorID:     comment.UserID,
		Type:        models.NotificationTypeComment,
		PostID:      comment.PostID,
		CommentID:   &id,
	}
	if comment.ParentID != nil {
		n.RecipientID = parentOwner
		n.Type = models.NotificationTypeReply
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("Error creating %s notification: %v", n.Type, err)
	}
}

// validateParent checks the parent belongs to postID and that its ancestor
// chain terminates. It returns the parent's author.
func validateParent(tx *gorm.DB, postID, parentID uint) (uint, error) {
	var parent models.Comment
	err := tx.Select("id, post_id, user_id, parent_id").Where("id = ?", parentID).Take(&parent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: parent comment %d does not exist", ErrValidation, parentID)
	}
	if err != nil {
		return 0, err
	}
	if parent.PostID != postID {
		return 0, fmt.Errorf("%w: parent comment %d belongs to another post", ErrValidation, parentID)
	}

	seen := map[uint]bool{parent.ID: true}
	next := parent.ParentID
	for next != nil {
		if seen[*next] {
			return 0, fmt.Errorf("%w: comment %d has a cyclic ancestry", ErrValidation, parentID)
		}
		seen[*next] = true

		var ancestor models.Comment
		err := tx.Select("id, parent_id").Where("id = ?", *next).Take(&ancestor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return 0, err
		}
		next = ancestor.ParentID
	}
	return parent.UserID, nil
}

func postExists(db *gorm.DB, postID uint) error {
	var count int64
	if err := db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	return nil
}
