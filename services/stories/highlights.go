package stories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storyline-backend/models/story"
)

// LinkRef names one item to link into a highlight: exactly one of the two
// ids must be set.
type LinkRef struct {
	StoryID         *uint `json:"story_id,omitempty"`
	ArchivedStoryID *uint `json:"archived_story_id,omitempty"`
}

type CreateHighlightInput struct {
	Title string    `validate:"required,max=100"`
	Items []LinkRef `validate:"required,min=1"`
}

// CreateHighlight creates a highlight with its initial links. A highlight
// cannot be created empty.
func (s *Service) CreateHighlight(ctx context.Context, actorID uint, in CreateHighlightInput) (*story.Highlight, error) {
	if err := s.val.Struct(in); err != nil {
		return nil, invalid(validationMessage(err))
	}

	h := story.Highlight{UserID: actorID, Title: in.Title, CreatedAt: s.now()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&h).Error; err != nil {
			return err
		}
		links, err := s.resolveRefs(tx, actorID, h.ID, 0, in.Items)
		if err != nil {
			return err
		}
		h.Links = links
		return tx.Create(&h.Links).Error
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, unavailable("create highlight", err)
	}
	return &h, nil
}

// AddHighlightItems appends links, continuing positions from max+1.
func (s *Service) AddHighlightItems(ctx context.Context, actorID, highlightID uint, items []LinkRef) (*story.Highlight, error) {
	if len(items) == 0 {
		return nil, invalid("no items to add")
	}
	h, err := s.loadHighlight(ctx, highlightID)
	if err != nil {
		return nil, err
	}
	if h.UserID != actorID {
		return nil, unauthorized("only the owner can edit a highlight")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next := len(h.Links)
		links, err := s.resolveRefs(tx, actorID, h.ID, next, items)
		if err != nil {
			return err
		}
		if err := tx.Create(&links).Error; err != nil {
			return err
		}
		h.Links = append(h.Links, links...)
		return nil
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, unavailable("add highlight items", err)
	}
	return h, nil
}

// RemoveHighlightLink deletes one link and closes the position gap.
// Removing the last remaining link deletes the whole highlight.
func (s *Service) RemoveHighlightLink(ctx context.Context, actorID, linkID uint) error {
	var link story.HighlightLink
	res := s.db.WithContext(ctx).First(&link, linkID)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return notFound("highlight link")
	}
	if res.Error != nil {
		return unavailable("lookup highlight link", res.Error)
	}

	h, err := s.loadHighlight(ctx, link.HighlightID)
	if err != nil {
		return err
	}
	if h.UserID != actorID {
		return unauthorized("only the owner can edit a highlight")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return removeLinkTx(tx, link)
	})
	if err != nil {
		return unavailable("remove highlight link", err)
	}
	return nil
}

// ReorderHighlightLinks rewrites every link position from a permutation of
// the highlight's link ids. The whole order is replaced in one transaction
// so no transient duplicate or gap is ever observable.
func (s *Service) ReorderHighlightLinks(ctx context.Context, actorID, highlightID uint, orderedLinkIDs []uint) (*story.Highlight, error) {
	h, err := s.loadHighlight(ctx, highlightID)
	if err != nil {
		return nil, err
	}
	if h.UserID != actorID {
		return nil, unauthorized("only the owner can edit a highlight")
	}

	if len(orderedLinkIDs) != len(h.Links) {
		return nil, invalid("reorder must list every link exactly once")
	}
	current := make(map[uint]bool, len(h.Links))
	for _, l := range h.Links {
		current[l.ID] = true
	}
	seen := make(map[uint]bool, len(orderedLinkIDs))
	for _, id := range orderedLinkIDs {
		if !current[id] || seen[id] {
			return nil, invalid(fmt.Sprintf("link %d is not a valid reorder target", id))
		}
		seen[id] = true
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for pos, id := range orderedLinkIDs {
			if err := tx.Model(&story.HighlightLink{}).Where("id = ?", id).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("reorder highlight links", err)
	}
	return s.loadHighlight(ctx, highlightID)
}

// GetHighlight returns a highlight with links in position order.
func (s *Service) GetHighlight(ctx context.Context, highlightID uint) (*story.Highlight, error) {
	return s.loadHighlight(ctx, highlightID)
}

func (s *Service) loadHighlight(ctx context.Context, highlightID uint) (*story.Highlight, error) {
	var h story.Highlight
	res := s.db.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&h, highlightID)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, notFound("highlight")
	}
	if res.Error != nil {
		return nil, unavailable("lookup highlight", res.Error)
	}
	return &h, nil
}

// resolveRefs validates link targets (pool exclusivity, existence, actor
// ownership) and assigns positions starting at next.
func (s *Service) resolveRefs(tx *gorm.DB, actorID, highlightID uint, next int, items []LinkRef) ([]story.HighlightLink, error) {
	links := make([]story.HighlightLink, 0, len(items))
	for _, ref := range items {
		link := story.HighlightLink{
			HighlightID:     highlightID,
			Position:        next,
			StoryID:         ref.StoryID,
			ArchivedStoryID: ref.ArchivedStoryID,
		}
		if !link.Valid() {
			return nil, invalid("a link must reference exactly one of story or archived story")
		}
		if ref.StoryID != nil {
			var st story.Story
			if err := tx.First(&st, *ref.StoryID).Error; err != nil {
				return nil, notFound("story")
			}
			if st.UserID != actorID {
				return nil, unauthorized("cannot highlight someone else's story")
			}
		} else {
			var arch story.ArchivedStory
			if err := tx.First(&arch, *ref.ArchivedStoryID).Error; err != nil {
				return nil, notFound("archived story")
			}
			if arch.UserID != actorID {
				return nil, unauthorized("cannot highlight someone else's story")
			}
		}
		links = append(links, link)
		next++
	}
	return links, nil
}

// removeLinkTx deletes a link, compacts the remaining positions back to a
// contiguous 0..n-1 run, and cascades the highlight away when the removed
// link was the last one.
func removeLinkTx(tx *gorm.DB, link story.HighlightLink) error {
	if err := tx.Delete(&story.HighlightLink{}, link.ID).Error; err != nil {
		return err
	}

	var rest []story.HighlightLink
	if err := tx.Where("highlight_id = ?", link.HighlightID).Order("position").Find(&rest).Error; err != nil {
		return err
	}
	if len(rest) == 0 {
		return tx.Delete(&story.Highlight{}, link.HighlightID).Error
	}
	for pos, l := range rest {
		if l.Position == pos {
			continue
		}
		if err := tx.Model(&story.HighlightLink{}).Where("id = ?", l.ID).
			Update("position", pos).Error; err != nil {
			return err
		}
	}
	return nil
}
