package models

import (
	"time"

	"github.com/theleywin/Backend-Meme-Nest/src/tags"
)

type Post struct {
	ID                uint      `json:"id" gorm:"primarykey"`
	CreatedAt         time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt         time.Time `json:"updatedAt"`
	UserID            uint      `json:"user_id" gorm:"not null;index"`
	User              *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Title             string    `json:"title" gorm:"not null"`
	Source            string    `json:"source"`
	SearchableContent string    `json:"searchable_content" gorm:"type:text"`
	Tags              string    `json:"tags" gorm:"not null;default:'no-tags'"`
	Likes             int       `json:"likes" gorm:"not null;default:0"`
	Dislikes          int       `json:"dislikes" gorm:"not null;default:0"`
	Score             int       `json:"score" gorm:"not null;default:0;index"`
}

// TagList returns the post's tags without the storage sentinel.
func (p *Post) TagList() []string {
	return tags.Parse(p.Tags)
}

type PostDto struct {
	ID           uint          `json:"_id"`
	Author       UserDto       `json:"author"`
	Title        string        `json:"title"`
	Source       string        `json:"source,omitempty"`
	Content      string        `json:"content,omitempty"`
	Tags         []string      `json:"tags"`
	Likes        int           `json:"likes"`
	Dislikes     int           `json:"dislikes"`
	Score        int           `json:"score"`
	UserReaction *ReactionKind `json:"userReaction,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type PostPageDto struct {
	Posts  []PostDto `json:"posts"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

type Comment struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	PostID     uint      `json:"post_id" gorm:"not null;index"`
	Post       *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	User       *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ParentID   *uint     `json:"parent_id" gorm:"index"`
	Parent     *Comment  `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	Attachment string    `json:"attachment"`
	Likes      int       `json:"likes" gorm:"not null;default:0"`
	Dislikes   int       `json:"dislikes" gorm:"not null;default:0"`
	Score      int       `json:"score" gorm:"not null;default:0"`
}

type CommentDto struct {
	ID           uint          `json:"_id"`
	ParentID     *uint         `json:"parentId,omitempty"`
	Content      string        `json:"content"`
	Attachment   string        `json:"attachment,omitempty"`
	User         UserDto       `json:"user"`
	Likes        int           `json:"likes"`
	Dislikes     int           `json:"dislikes"`
	Score        int           `json:"score"`
	UserReaction *ReactionKind `json:"userReaction,omitempty"`
	Replies      []CommentDto  `json:"replies"`
	CreatedAt    time.Time     `json:"createdAt"`
}

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Reaction targets exactly one post or one comment; the check constraint enforces it in the database.
type Reaction struct {
	ID        uint         `json:"id" gorm:"primarykey"`
	CreatedAt time.Time    `json:"createdAt"`
	UserID    uint         `json:"user_id" gorm:"not null;uniqueIndex:idx_reactions_user_post;uniqueIndex:idx_reactions_user_comment"`
	User      *User        `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Kind      ReactionKind `json:"kind" gorm:"type:varchar(10);not null"`
	PostID    *uint        `json:"post_id,omitempty" gorm:"uniqueIndex:idx_reactions_user_post;check:chk_reactions_target,(post_id IS NULL) <> (comment_id IS NULL)"`
	Post      *Post        `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CommentID *uint        `json:"comment_id,omitempty" gorm:"uniqueIndex:idx_reactions_user_comment"`
	Comment   *Comment     `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

type ReactionResultDto struct {
	Likes        int           `json:"likes"`
	Dislikes     int           `json:"dislikes"`
	Score        int           `json:"score"`
	UserReaction *ReactionKind `json:"userReaction"`
}
