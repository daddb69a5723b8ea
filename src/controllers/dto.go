package controllers

import (
	"context"
	"log"

	"github.com/theleywin/Backend-Meme-Nest/src/models"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
)

func convertToPostDto(post models.Post, reaction *models.ReactionKind) models.PostDto {
	return models.PostDto{
		ID:           post.ID,
		Author:       post.User.ToDto(),
		Title:        post.Title,
		Source:       post.Source,
		Content:      post.SearchableContent,
		Tags:         post.TagList(),
		Likes:        post.Likes,
		Dislikes:     post.Dislikes,
		Score:        post.Score,
		UserReaction: reaction,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
}

func convertCommentNode(node *services.CommentNode, reactions map[uint]models.ReactionKind) models.CommentDto {
	c := node.Comment
	dto := models.CommentDto{
		ID:           c.ID,
		ParentID:     c.ParentID,
		Content:      c.Content,
		Attachment:   c.Attachment,
		User:         c.User.ToDto(),
		Likes:        c.Likes,
		Dislikes:     c.Dislikes,
		Score:        c.Score,
		UserReaction: reactionOf(reactions, c.ID),
		Replies:      make([]models.CommentDto, 0, len(node.Children)),
		CreatedAt:    c.CreatedAt,
	}
	for _, child := range node.Children {
		dto.Replies = append(dto.Replies, convertCommentNode(child, reactions))
	}
	return dto
}

func convertToProfileDto(user *models.User, postCount int64) models.ProfileDto {
	return models.ProfileDto{
		UserDto:   user.ToDto(),
		Bio:       user.Bio,
		PostCount: postCount,
		CreatedAt: user.CreatedAt,
	}
}

func reactionOf(reactions map[uint]models.ReactionKind, id uint) *models.ReactionKind {
	kind, ok := reactions[id]
	if !ok {
		return nil
	}
	return &kind
}

// postDtos decorates posts with the viewer's own reactions.
func (h *Controller) postDtos(ctx context.Context, posts []models.Post, viewerID uint) []models.PostDto {
	reactions := map[uint]models.ReactionKind{}
	if viewerID != 0 && len(posts) > 0 {
		ids := make([]uint, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		var err error
		if reactions, err = h.svc.Reactions.UserReactions(ctx, services.TargetPost, viewerID, ids); err != nil {
			log.Printf("Error cargando reacciones: %v", err)
		}
	}

	dtos := make([]models.PostDto, 0, len(posts))
	for _, p := range posts {
		dtos = append(dtos, convertToPostDto(p, reactionOf(reactions, p.ID)))
	}
	return dtos
}
