// Package stories implements the store-backed half of the ephemeral story
// lifecycle: creation and deletion, view/like deduplication, comments,
// the archive-then-delete migration and highlight link maintenance.
//
// Every mutation returns the authoritative entity or a typed *Error; the
// optimistic client applies the compensating inverse on any failure.
package stories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"storyline-backend/models/story"
	"storyline-backend/models/users"
)

// Invalidator is the page-level cache-invalidation hook fired after
// successful mutations. It is a notification, not a dependency: failures
// are ignored and a nil hook is valid.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

type Service struct {
	db   *gorm.DB
	log  *slog.Logger
	val  *validator.Validate
	hook Invalidator

	// now is injectable so expiry tests do not sleep.
	now func() time.Time
}

func New(db *gorm.DB, log *slog.Logger) *Service {
	return &Service{
		db:  db,
		log: log,
		val: validator.New(validator.WithRequiredStructEnabled()),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithHook attaches the cache-invalidation hook.
func (s *Service) WithHook(h Invalidator) *Service {
	s.hook = h
	return s
}

// WithClock overrides the time source. Test use only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.hook != nil {
		s.hook.Invalidate(ctx, keys...)
	}
}

type CreateStoryInput struct {
	MediaURL           string `validate:"required,url"`
	TTL                time.Duration
	ShowReactionCounts *bool
}

// CreateStory inserts a live story for the actor. TTL defaults to
// story.DefaultTTL when zero.
func (s *Service) CreateStory(ctx context.Context, actorID uint, in CreateStoryInput) (*story.Story, error) {
	if err := s.val.Struct(in); err != nil {
		return nil, invalid(validationMessage(err))
	}

	ttl := in.TTL
	if ttl <= 0 {
		ttl = story.DefaultTTL
	}
	show := true
	if in.ShowReactionCounts != nil {
		show = *in.ShowReactionCounts
	}

	now := s.now()
	st := story.Story{
		UserID:             actorID,
		MediaURL:           in.MediaURL,
		CreatedAt:          now,
		ExpireAt:           now.Add(ttl),
		ShowReactionCounts: show,
	}
	if err := s.db.WithContext(ctx).Create(&st).Error; err != nil {
		return nil, unavailable("create story", err)
	}

	s.invalidate(ctx, fmt.Sprintf("user-stories:%d", actorID))
	return &st, nil
}

// GetUserStories returns the owner's live, unexpired stories in creation
// order with relations preloaded.
func (s *Service) GetUserStories(ctx context.Context, ownerID uint) ([]story.Story, error) {
	var out []story.Story
	err := s.db.WithContext(ctx).
		Preload("Reactions").
		Preload("Views").
		Preload("Comments").
		Preload("Comments.Reactions").
		Where("user_id = ? AND expire_at > ?", ownerID, s.now()).
		Order("created_at").
		Find(&out).Error
	if err != nil {
		return nil, unavailable("list stories", err)
	}
	return out, nil
}

// DeleteStory removes a live story and its whole relation graph. Owner only.
func (s *Service) DeleteStory(ctx context.Context, actorID, storyID uint) error {
	st, err := s.loadStory(ctx, storyID)
	if err != nil {
		return err
	}
	if st.UserID != actorID {
		return unauthorized("only the owner can delete a story")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteLiveGraph(tx, st.ID); err != nil {
			return err
		}
		// A deleted story must not leave dangling highlight links.
		return dropLinksForStory(tx, st.ID)
	})
	if err != nil {
		return unavailable("delete story", err)
	}

	s.invalidate(ctx, fmt.Sprintf("user-stories:%d", st.UserID))
	return nil
}

// RecordView inserts a (story, viewer) pair once. The owner is excluded
// from their own view set and repeat views are no-ops; both cases return
// the current state without error.
func (s *Service) RecordView(ctx context.Context, actorID, storyID uint) (*story.View, error) {
	st, err := s.loadStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if st.UserID == actorID {
		return nil, nil
	}

	var existing story.View
	res := s.db.WithContext(ctx).Where("story_id = ? AND user_id = ?", storyID, actorID).First(&existing)
	if res.Error == nil {
		return &existing, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, unavailable("lookup view", res.Error)
	}

	v := story.View{StoryID: storyID, UserID: actorID, ViewedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&v).Error; err != nil {
		// Concurrent viewers race at the unique index; losing the race
		// means the pair exists, which is the desired end state.
		res := s.db.WithContext(ctx).Where("story_id = ? AND user_id = ?", storyID, actorID).First(&existing)
		if res.Error == nil {
			return &existing, nil
		}
		return nil, unavailable("record view", err)
	}
	return &v, nil
}

type AddCommentInput struct {
	StoryID         uint   `validate:"required"`
	Content         string `validate:"required,max=2000"`
	ParentCommentID *uint
}

// AddComment creates a comment (or a threaded reply when ParentCommentID is
// set). Replies must target a comment on the same story.
func (s *Service) AddComment(ctx context.Context, actorID uint, in AddCommentInput) (*story.Comment, error) {
	if err := s.val.Struct(in); err != nil {
		return nil, invalid(validationMessage(err))
	}

	st, err := s.loadStory(ctx, in.StoryID)
	if err != nil {
		return nil, err
	}

	if in.ParentCommentID != nil {
		var parent story.Comment
		res := s.db.WithContext(ctx).First(&parent, *in.ParentCommentID)
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, notFound("parent comment")
		}
		if res.Error != nil {
			return nil, unavailable("lookup parent comment", res.Error)
		}
		if parent.StoryID != in.StoryID {
			return nil, invalid("parent comment belongs to another story")
		}
	}

	c := story.Comment{
		StoryID:         in.StoryID,
		UserID:          actorID,
		Content:         in.Content,
		ParentCommentID: in.ParentCommentID,
		CreatedAt:       s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, unavailable("add comment", err)
	}

	if st.UserID != actorID {
		s.notify(ctx, st.UserID, fmt.Sprintf("User %d commented on your story", actorID))
	}
	s.invalidate(ctx, fmt.Sprintf("story:%d", st.ID))
	return &c, nil
}

// DeleteComment removes a comment, its replies and their reactions. Allowed
// for the comment author and for the story owner.
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID uint) error {
	var c story.Comment
	res := s.db.WithContext(ctx).First(&c, commentID)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return notFound("comment")
	}
	if res.Error != nil {
		return unavailable("lookup comment", res.Error)
	}

	st, err := s.loadStory(ctx, c.StoryID)
	if err != nil {
		return err
	}
	if c.UserID != actorID && st.UserID != actorID {
		return unauthorized("only the author or the story owner can delete a comment")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCommentTree(tx, c.ID)
	})
	if err != nil {
		return unavailable("delete comment", err)
	}

	s.invalidate(ctx, fmt.Sprintf("story:%d", st.ID))
	return nil
}

// ToggleStoryReaction flips the actor's like on a story: create-if-absent,
// delete-if-present. Returns the resulting membership.
func (s *Service) ToggleStoryReaction(ctx context.Context, actorID, storyID uint) (bool, error) {
	st, err := s.loadStory(ctx, storyID)
	if err != nil {
		return false, err
	}

	var existing story.Reaction
	res := s.db.WithContext(ctx).Where("story_id = ? AND user_id = ?", storyID, actorID).First(&existing)
	switch {
	case res.Error == nil:
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return true, unavailable("remove reaction", err)
		}
		return false, nil
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		r := story.Reaction{StoryID: &storyID, UserID: actorID, CreatedAt: s.now()}
		if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
			// Losing the unique-index race means the pair already exists,
			// which is the membership this branch was creating.
			if res := s.db.WithContext(ctx).Where("story_id = ? AND user_id = ?", storyID, actorID).First(&existing); res.Error == nil {
				return true, nil
			}
			return false, unavailable("add reaction", err)
		}
		if st.UserID != actorID {
			s.notify(ctx, st.UserID, fmt.Sprintf("User %d reacted to your story", actorID))
		}
		return true, nil
	default:
		return false, unavailable("lookup reaction", res.Error)
	}
}

// ToggleCommentReaction flips the actor's like on a comment.
func (s *Service) ToggleCommentReaction(ctx context.Context, actorID, commentID uint) (bool, error) {
	var c story.Comment
	res := s.db.WithContext(ctx).First(&c, commentID)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, notFound("comment")
	}
	if res.Error != nil {
		return false, unavailable("lookup comment", res.Error)
	}

	var existing story.Reaction
	res = s.db.WithContext(ctx).Where("comment_id = ? AND user_id = ?", commentID, actorID).First(&existing)
	switch {
	case res.Error == nil:
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return true, unavailable("remove reaction", err)
		}
		return false, nil
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		r := story.Reaction{CommentID: &commentID, UserID: actorID, CreatedAt: s.now()}
		if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
			if res := s.db.WithContext(ctx).Where("comment_id = ? AND user_id = ?", commentID, actorID).First(&existing); res.Error == nil {
				return true, nil
			}
			return false, unavailable("add reaction", err)
		}
		return true, nil
	default:
		return false, unavailable("lookup reaction", res.Error)
	}
}

// ReactionSummary is what a given actor is allowed to see about a story's
// reactions.
type ReactionSummary struct {
	LikesCount   int  `json:"likes_count"`
	CountsHidden bool `json:"counts_hidden"`
	ActorLiked   bool `json:"actor_liked"`
}

// StoryReactionSummary applies the visibility flag: non-owners of a story
// with ShowReactionCounts=false see no count, the owner always sees the
// true numbers. The actor's own membership is always visible.
func (s *Service) StoryReactionSummary(ctx context.Context, actorID, storyID uint) (*ReactionSummary, error) {
	st, err := s.loadStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&story.Reaction{}).Where("story_id = ?", storyID).Count(&count).Error; err != nil {
		return nil, unavailable("count reactions", err)
	}
	var mine int64
	if err := s.db.WithContext(ctx).Model(&story.Reaction{}).Where("story_id = ? AND user_id = ?", storyID, actorID).Count(&mine).Error; err != nil {
		return nil, unavailable("count reactions", err)
	}

	sum := &ReactionSummary{ActorLiked: mine > 0}
	if st.UserID != actorID && !st.ShowReactionCounts {
		sum.CountsHidden = true
	} else {
		sum.LikesCount = int(count)
	}
	return sum, nil
}

// ListNotifications returns the user's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID uint) ([]story.Notification, error) {
	var out []story.Notification
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, unavailable("list notifications", err)
	}
	return out, nil
}

func (s *Service) notify(ctx context.Context, userID uint, message string) {
	n := story.Notification{UserID: userID, Message: message, CreatedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		s.log.Warn("notification write failed", "user_id", userID, "error", err)
	}
}

func (s *Service) loadStory(ctx context.Context, storyID uint) (*story.Story, error) {
	var st story.Story
	res := s.db.WithContext(ctx).First(&st, storyID)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, notFound("story")
	}
	if res.Error != nil {
		return nil, unavailable("lookup story", res.Error)
	}
	return &st, nil
}

// displayIdentity resolves the name/avatar frozen into archive snapshots.
// Missing users (deleted accounts) archive with empty display fields.
func (s *Service) displayIdentity(ctx context.Context, userID uint) (name, avatar string) {
	var u users.User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return "", ""
	}
	return u.Name, u.AvatarURL
}

// deleteCommentTree removes a comment with its reactions and, child-first,
// any replies pointing at it.
func deleteCommentTree(tx *gorm.DB, commentID uint) error {
	var replies []story.Comment
	if err := tx.Where("parent_comment_id = ?", commentID).Find(&replies).Error; err != nil {
		return err
	}
	for _, reply := range replies {
		if err := deleteCommentTree(tx, reply.ID); err != nil {
			return err
		}
	}
	if err := tx.Where("comment_id = ?", commentID).Delete(&story.Reaction{}).Error; err != nil {
		return err
	}
	return tx.Delete(&story.Comment{}, commentID).Error
}

// deleteLiveGraph removes a story and all live relations, children before
// parents so referential constraints hold at every step.
func deleteLiveGraph(tx *gorm.DB, storyID uint) error {
	var comments []story.Comment
	if err := tx.Where("story_id = ? AND parent_comment_id IS NULL", storyID).Find(&comments).Error; err != nil {
		return err
	}
	for _, c := range comments {
		if err := deleteCommentTree(tx, c.ID); err != nil {
			return err
		}
	}
	if err := tx.Where("story_id = ?", storyID).Delete(&story.View{}).Error; err != nil {
		return err
	}
	if err := tx.Where("story_id = ?", storyID).Delete(&story.Reaction{}).Error; err != nil {
		return err
	}
	return tx.Delete(&story.Story{}, storyID).Error
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("invalid field %s (%s)", verrs[0].StructField(), verrs[0].Tag())
	}
	return err.Error()
}
