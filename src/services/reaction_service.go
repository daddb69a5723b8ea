package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theleywin/Backend-Meme-Nest/src/models"
)

type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// ReactionTarget names the single post or comment a reaction applies to.
type ReactionTarget struct {
	Type TargetType
	ID   uint
}

func PostTarget(id uint) ReactionTarget    { return ReactionTarget{Type: TargetPost, ID: id} }
func CommentTarget(id uint) ReactionTarget { return ReactionTarget{Type: TargetComment, ID: id} }

func (t ReactionTarget) table() (string, string, error) {
	switch t.Type {
	case TargetPost:
		return "posts", "post_id", nil
	case TargetComment:
		return "comments", "comment_id", nil
	}
	return "", "", fmt.Errorf("%w: unknown reaction target %q", ErrValidation, t.Type)
}

// ReactionResult is the target's counters after a reaction was applied.
type ReactionResult struct {
	Likes    int
	Dislikes int
	Score    int
	// Current is the caller's reaction after the call, nil when it was toggled off.
	Current *models.ReactionKind
}

type counterRow struct {
	ID       uint
	UserID   uint
	PostID   uint
	Likes    int
	Dislikes int
	Score    int
}

type ReactionService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewReactionService(db *gorm.DB, notifier *NotificationService) *ReactionService {
	return &ReactionService{db: db, notifier: notifier}
}

// Apply records kind for userID on target. Repeating the stored kind removes it,
// the opposite kind replaces it. Counters move in the same transaction as the reaction rows.
func (s *ReactionService) Apply(ctx context.Context, target ReactionTarget, userID uint, kind models.ReactionKind) (*ReactionResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: reaction must be like or dislike", ErrValidation)
	}
	table, column, err := target.table()
	if err != nil {
		return nil, err
	}

	var (
		result  ReactionResult
		row     counterRow
		created bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadCounters(tx, target, &row); err != nil {
			return err
		}

		var existing models.Reaction
		err := tx.Where("user_id = ? AND "+column+" = ?", userID, target.ID).Take(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		found := err == nil

		likes, dislikes := 0, 0
		bump := func(k models.ReactionKind, n int) {
			if k == models.ReactionLike {
				likes += n
			} else {
				dislikes += n
			}
		}

		if found {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			bump(existing.Kind, -1)
		}
		if !found || existing.Kind != kind {
			reaction := newReaction(target, userID, kind)
			if err := tx.Create(&reaction).Error; err != nil {
				return err
			}
			bump(kind, 1)
			current := kind
			result.Current = &current
			created = true
		}

		err = tx.Table(table).Where("id = ?", target.ID).Updates(map[string]interface{}{
			"likes":    gorm.Expr("likes + ?", likes),
			"dislikes": gorm.Expr("dislikes + ?", dislikes),
			"score":    gorm.Expr("score + ?", likes-dislikes),
		}).Error
		if err != nil {
			return err
		}

		return loadCounters(tx, target, &row)
	})
	if err != nil {
		return nil, err
	}

	result.Likes, result.Dislikes, result.Score = row.Likes, row.Dislikes, row.Score

	if created && kind == models.ReactionLike && s.notifier != nil {
		n := models.Notification{
			RecipientID: row.UserID,
			ActorID:     userID,
			Type:        models.NotificationTypeLike,
			PostID:      row.PostID,
		}
		if target.Type == TargetComment {
			id := target.ID
			n.CommentID = &id
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			log.Printf("Error creating like notification: %v", err)
		}
	}

	return &result, nil
}

// UserReactions returns userID's reaction for each of ids that has one.
func (s *ReactionService) UserReactions(ctx context.Context, targetType TargetType, userID uint, ids []uint) (map[uint]models.ReactionKind, error) {
	out := map[uint]models.ReactionKind{}
	if len(ids) == 0 {
		return out, nil
	}
	_, column, err := ReactionTarget{Type: targetType}.table()
	if err != nil {
		return nil, err
	}

	var reactions []models.Reaction
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND "+column+" IN ?", userID, ids).
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}

	for _, r := range reactions {
		switch {
		case targetType == TargetPost && r.PostID != nil:
			out[*r.PostID] = r.Kind
		case targetType == TargetComment && r.CommentID != nil:
			out[*r.CommentID] = r.Kind
		}
	}
	return out, nil
}

func newReaction(target ReactionTarget, userID uint, kind models.ReactionKind) models.Reaction {
	id := target.ID
	r := models.Reaction{UserID: userID, Kind: kind}
	if target.Type == TargetPost {
		r.PostID = &id
	} else {
		r.CommentID = &id
	}
	return r
}

// loadCounters locks the target row where the dialect supports it.
func loadCounters(tx *gorm.DB, target ReactionTarget, row *counterRow) error {
	*row = counterRow{}
	query := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	var err error
	if target.Type == TargetPost {
		err = query.Table("posts").
			Select("id, user_id, id AS post_id, likes, dislikes, score").
			Where("id = ?", target.ID).
			Take(row).Error
	} else {
		err = query.Table("comments").
			Select("id, user_id, post_id, likes, dislikes, score").
			Where("id = ?", target.ID).
			Take(row).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, target.Type, target.ID)
	}
	return err
}
