package services

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/theleywin/Backend-Meme-Nest/src/models"
)

func TestCommentTreeFromService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	post := env.post(t, owner, "meme", "")

	c1 := env.comment(t, owner, post.ID, nil)
	c2 := env.comment(t, owner, post.ID, &c1.ID)
	c3 := env.comment(t, owner, post.ID, &c1.ID)
	c4 := env.comment(t, owner, post.ID, &c2.ID)

	tree, err := env.svc.Comments.Tree(ctx, post.ID)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	want := Shape{c1.ID: {c2.ID: {c4.ID: {}}, c3.ID: {}}}
	if got := tree.Shape(); !reflect.DeepEqual(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}
	if tree.ByID[c4.ID].Comment.User == nil || tree.ByID[c4.ID].Comment.User.Username != "owner" {
		t.Fatalf("authors should be preloaded")
	}

	_, err = env.svc.Comments.Tree(ctx, 999)
	wantErr(t, err, ErrNotFound)
}

func TestCreateRejectsParentOnAnotherPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	first := env.post(t, owner, "first", "")
	second := env.post(t, owner, "second", "")
	foreign := env.comment(t, owner, first.ID, nil)

	_, err := env.svc.Comments.Create(ctx, owner.ID, CommentInput{
		PostID:   second.ID,
		ParentID: &foreign.ID,
		Content:  "reply",
	})
	wantErr(t, err, ErrValidation)

	_, err = env.svc.Comments.Create(ctx, owner.ID, CommentInput{
		PostID:   second.ID,
		ParentID: ptr[uint](12345),
		Content:  "reply",
	})
	wantErr(t, err, ErrValidation)

	if n := env.count(t, &models.Comment{}, "post_id = ?", second.ID); n != 0 {
		t.Fatalf("rejected replies must not be stored, found %d", n)
	}

	_, err = env.svc.Comments.Create(ctx, owner.ID, CommentInput{PostID: 999, Content: "hi"})
	wantErr(t, err, ErrNotFound)

	_, err = env.svc.Comments.Create(ctx, owner.ID, CommentInput{PostID: first.ID, Content: "   "})
	wantErr(t, err, ErrValidation)
}

func TestCommentNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.post(t, owner, "meme", "")

	top := env.comment(t, alice, post.ID, nil)
	env.comment(t, bob, post.ID, &top.ID)
	env.comment(t, alice, post.ID, &top.ID)

	ownerNotes, _ := env.svc.Notifications.List(ctx, owner.ID)
	if len(ownerNotes) != 1 || ownerNotes[0].Type != models.NotificationTypeComment {
		t.Fatalf("owner should get one comment notification, got %+v", ownerNotes)
	}
	aliceNotes, _ := env.svc.Notifications.List(ctx, alice.ID)
	if len(aliceNotes) != 1 || aliceNotes[0].Type != models.NotificationTypeReply || aliceNotes[0].ActorID != bob.ID {
		t.Fatalf("alice should get bob's reply only, got %+v", aliceNotes)
	}
}

func TestCommentAttachmentAndDeleteCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	post := env.post(t, owner, "meme", "")

	top := env.comment(t, owner, post.ID, nil)
	reply, err := env.svc.Comments.Create(ctx, owner.ID, CommentInput{
		PostID:     post.ID,
		ParentID:   &top.ID,
		Attachment: &Upload{Filename: "reaction.gif", Data: []byte("gif")},
	})
	if err != nil {
		t.Fatalf("create with attachment: %v", err)
	}
	file := filepath.Join(env.dir, filepath.Base(reply.Attachment))
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("attachment not written: %v", err)
	}
	if _, err := env.svc.Reactions.Apply(ctx, CommentTarget(reply.ID), owner.ID, models.ReactionLike); err != nil {
		t.Fatalf("react: %v", err)
	}

	if err := env.svc.Comments.Delete(ctx, top.ID, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := env.count(t, &models.Comment{}, "post_id = ?", post.ID); n != 0 {
		t.Fatalf("replies should cascade, %d left", n)
	}
	if n := env.count(t, &models.Reaction{}, "comment_id = ?", reply.ID); n != 0 {
		t.Fatalf("reactions should cascade, %d left", n)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Fatalf("reply attachment should be removed, stat err = %v", err)
	}
}

func TestCommentDeleteKeepsOtherBranches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	other := env.user(t, "other")
	post := env.post(t, owner, "meme", "")

	withFile := func(author *models.User, parent *uint, name string) (*models.Comment, string) {
		c, err := env.svc.Comments.Create(ctx, author.ID, CommentInput{
			PostID:     post.ID,
			ParentID:   parent,
			Attachment: &Upload{Filename: name, Data: []byte(name)},
		})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		return c, filepath.Join(env.dir, filepath.Base(c.Attachment))
	}

	top, topFile := withFile(owner, nil, "top.png")
	mid, midFile := withFile(other, &top.ID, "mid.png")
	_, deepFile := withFile(owner, &mid.ID, "deep.png")
	keep, keepFile := withFile(other, nil, "keep.png")

	// Borrado denegado: no se toca ningún archivo
	wantErr(t, env.svc.Comments.Delete(ctx, top.ID, other.ID), ErrPermissionDenied)
	if _, err := os.Stat(topFile); err != nil {
		t.Fatalf("denied delete removed a file: %v", err)
	}

	if err := env.svc.Comments.Delete(ctx, top.ID, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, f := range []string{topFile, midFile, deepFile} {
		if _, err := os.Stat(f); !os.IsNotExist(err) {
			t.Fatalf("%s should be removed, stat err = %v", f, err)
		}
	}
	if _, err := os.Stat(keepFile); err != nil {
		t.Fatalf("unrelated attachment removed: %v", err)
	}
	if n := env.count(t, &models.Comment{}, "post_id = ?", post.ID); n != 1 {
		t.Fatalf("expected only the unrelated comment to remain, got %d", n)
	}
	if _, err := env.svc.Comments.Get(ctx, keep.ID); err != nil {
		t.Fatalf("unrelated comment gone: %v", err)
	}
}

func TestCommentOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	other := env.user(t, "other")
	post := env.post(t, owner, "meme", "")
	c := env.comment(t, owner, post.ID, nil)

	_, err := env.svc.Comments.Update(ctx, c.ID, other.ID, "hijacked")
	wantErr(t, err, ErrPermissionDenied)
	err = env.svc.Comments.Delete(ctx, c.ID, other.ID)
	wantErr(t, err, ErrPermissionDenied)
	err = env.svc.Comments.Delete(ctx, 999, other.ID)
	wantErr(t, err, ErrNotFound)

	updated, err := env.svc.Comments.Update(ctx, c.ID, owner.ID, "edited")
	if err != nil || updated.Content != "edited" {
		t.Fatalf("owner update failed: %v %+v", err, updated)
	}
}

func TestCommentStorageFailureLeavesNoRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	post := env.post(t, owner, "meme", "")

	broken := NewCommentService(env.db, failingStorage{}, nil)
	_, err := broken.Create(ctx, owner.ID, CommentInput{
		PostID:     post.ID,
		Content:    "look",
		Attachment: &Upload{Filename: "a.png", Data: []byte("png")},
	})
	wantErr(t, err, ErrStorage)
	if n := env.count(t, &models.Comment{}, "post_id = ?", post.ID); n != 0 {
		t.Fatalf("failed upload left %d comment rows", n)
	}
}
