package stories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storyline-backend/models/story"
)

// ScanReport is the result of one archival pass.
type ScanReport struct {
	SuccessCount int `json:"success_count"`
	TotalExpired int `json:"total_expired"`
}

// errAlreadyArchived marks the idempotence guard firing inside a migration.
var errAlreadyArchived = errors.New("story already archived")

// ArchiveStory migrates one story into its frozen snapshot on the owner's
// explicit request, regardless of expiry. Archiving a story that already
// has an archive is a conflict.
func (s *Service) ArchiveStory(ctx context.Context, actorID, storyID uint) (*story.ArchivedStory, error) {
	st, err := s.loadStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if st.UserID != actorID {
		return nil, unauthorized("only the owner can archive a story")
	}

	arch, err := s.archiveOne(ctx, st.ID)
	if errors.Is(err, errAlreadyArchived) {
		return nil, conflict("story already archived")
	}
	if err != nil {
		return nil, unavailable("archive story", err)
	}

	s.invalidate(ctx, fmt.Sprintf("user-stories:%d", st.UserID))
	return arch, nil
}

// RunArchivalScan migrates every story past its ExpireAt. Items are
// processed strictly sequentially; a failure on one story is logged and
// skipped so the batch keeps its progress. A story whose archive already
// exists is not re-archived - it is left for SweepOrphans to finish.
func (s *Service) RunArchivalScan(ctx context.Context) (ScanReport, error) {
	var expired []story.Story
	err := s.db.WithContext(ctx).Where("expire_at <= ?", s.now()).Order("id").Find(&expired).Error
	if err != nil {
		return ScanReport{}, unavailable("scan expired stories", err)
	}

	report := ScanReport{TotalExpired: len(expired)}
	for _, st := range expired {
		if _, err := s.archiveOne(ctx, st.ID); err != nil {
			if errors.Is(err, errAlreadyArchived) {
				s.log.Warn("expired story already archived, leaving for orphan sweep",
					"story_id", st.ID)
			} else {
				s.log.Error("archival failed", "story_id", st.ID, "error", err)
			}
			continue
		}
		report.SuccessCount++
	}

	s.log.Info("archival scan finished",
		"total_expired", report.TotalExpired, "archived", report.SuccessCount)
	return report, nil
}

// SweepOrphans completes interrupted migrations: when a crash landed
// between the snapshot write and the live delete, both copies coexist.
// The sweep finds live stories that already have an archive and finishes
// the delete. Idempotent; safe to run any number of times.
func (s *Service) SweepOrphans(ctx context.Context) (int, error) {
	var orphaned []story.Story
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&story.ArchivedStory{}).Select("original_story_id")).
		Find(&orphaned).Error
	if err != nil {
		return 0, unavailable("scan orphans", err)
	}

	swept := 0
	for _, st := range orphaned {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := repointLinks(tx, st.ID); err != nil {
				return err
			}
			return deleteLiveGraph(tx, st.ID)
		})
		if err != nil {
			s.log.Error("orphan sweep failed", "story_id", st.ID, "error", err)
			continue
		}
		s.log.Warn("completed interrupted archival", "story_id", st.ID)
		swept++
	}
	return swept, nil
}

// RepostArchivedStory creates a fresh live story from an archive the actor
// owns: new id, new TTL, empty relation sets. The archive is untouched.
func (s *Service) RepostArchivedStory(ctx context.Context, actorID, archivedID uint) (*story.Story, error) {
	var arch story.ArchivedStory
	res := s.db.WithContext(ctx).First(&arch, archivedID)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, notFound("archived story")
	}
	if res.Error != nil {
		return nil, unavailable("lookup archived story", res.Error)
	}
	if arch.UserID != actorID {
		return nil, unauthorized("only the owner can repost an archived story")
	}

	return s.CreateStory(ctx, actorID, CreateStoryInput{MediaURL: arch.MediaURL})
}

// GetUserArchive returns the owner's archived stories, newest first. Only
// the owner may read their archive.
func (s *Service) GetUserArchive(ctx context.Context, actorID uint) ([]story.ArchivedStory, error) {
	var out []story.ArchivedStory
	err := s.db.WithContext(ctx).
		Preload("Reactions").
		Preload("Views").
		Preload("Comments").
		Where("user_id = ?", actorID).
		Order("archived_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, unavailable("list archive", err)
	}
	return out, nil
}

// archiveOne runs the two-step migration for a single story inside one
// transaction: snapshot the full relation graph with display identities
// captured now, re-point highlight links to the archive, then delete the
// live graph. The unique OriginalStoryID index backs the idempotence guard.
func (s *Service) archiveOne(ctx context.Context, storyID uint) (*story.ArchivedStory, error) {
	var arch *story.ArchivedStory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing story.ArchivedStory
		res := tx.Where("original_story_id = ?", storyID).First(&existing)
		if res.Error == nil {
			return errAlreadyArchived
		}
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}

		var st story.Story
		if err := tx.
			Preload("Reactions").
			Preload("Views").
			Preload("Comments").
			Preload("Comments.Reactions").
			First(&st, storyID).Error; err != nil {
			return err
		}

		snapshot := s.buildSnapshot(ctx, &st)
		if err := tx.Create(snapshot).Error; err != nil {
			return err
		}
		if err := tx.Model(&story.HighlightLink{}).
			Where("story_id = ?", st.ID).
			Updates(map[string]interface{}{
				"story_id":          nil,
				"archived_story_id": snapshot.ID,
			}).Error; err != nil {
			return err
		}
		if err := deleteLiveGraph(tx, st.ID); err != nil {
			return err
		}

		arch = snapshot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return arch, nil
}

// buildSnapshot denormalizes the story graph into frozen archive rows.
// Counts are computed here, once, and never recomputed afterwards.
func (s *Service) buildSnapshot(ctx context.Context, st *story.Story) *story.ArchivedStory {
	arch := &story.ArchivedStory{
		OriginalStoryID: st.ID,
		UserID:          st.UserID,
		MediaURL:        st.MediaURL,
		CreatedAt:       st.CreatedAt,
		ExpiredAt:       st.ExpireAt,
		ArchivedAt:      s.now(),
		LikesCount:      len(st.Reactions),
		ViewsCount:      len(st.Views),
		CommentsCount:   len(st.Comments),
	}

	for _, r := range st.Reactions {
		name, avatar := s.displayIdentity(ctx, r.UserID)
		arch.Reactions = append(arch.Reactions, story.ArchivedReaction{
			UserID:     r.UserID,
			UserName:   name,
			UserAvatar: avatar,
			Emoji:      r.Emoji,
		})
	}
	for _, v := range st.Views {
		name, avatar := s.displayIdentity(ctx, v.UserID)
		arch.Views = append(arch.Views, story.ArchivedView{
			UserID:     v.UserID,
			UserName:   name,
			UserAvatar: avatar,
			ViewedAt:   v.ViewedAt,
		})
	}
	for _, c := range st.Comments {
		name, avatar := s.displayIdentity(ctx, c.UserID)
		arch.Comments = append(arch.Comments, story.ArchivedComment{
			UserID:     c.UserID,
			UserName:   name,
			UserAvatar: avatar,
			Content:    c.Content,
			LikesCount: len(c.Reactions),
			CreatedAt:  c.CreatedAt,
		})
	}
	return arch
}

// repointLinks moves highlight links from a live story to its existing
// archive. Used by the orphan sweep, where the archive row already exists.
func repointLinks(tx *gorm.DB, storyID uint) error {
	var arch story.ArchivedStory
	if err := tx.Where("original_story_id = ?", storyID).First(&arch).Error; err != nil {
		return err
	}
	return tx.Model(&story.HighlightLink{}).
		Where("story_id = ?", storyID).
		Updates(map[string]interface{}{
			"story_id":          nil,
			"archived_story_id": arch.ID,
		}).Error
}

// dropLinksForStory deletes highlight links that referenced an explicitly
// deleted live story, collapsing positions and cascading empty highlights.
func dropLinksForStory(tx *gorm.DB, storyID uint) error {
	var links []story.HighlightLink
	if err := tx.Where("story_id = ?", storyID).Find(&links).Error; err != nil {
		return err
	}
	for _, l := range links {
		if err := removeLinkTx(tx, l); err != nil {
			return err
		}
	}
	return nil
}
