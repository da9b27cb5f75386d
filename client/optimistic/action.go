package optimistic

// Action is the tagged union of local mutations. Apply copies the state and
// hands the copy to the action; actions therefore mutate freely.
type Action interface {
	apply(s *State)
}

// Apply runs one action against a deep copy of s and returns the new state.
// Unknown targets are no-ops: a straggling response for an entity that was
// superseded locally must never disturb unrelated state.
func Apply(s State, a Action) State {
	next := s.clone()
	a.apply(&next)
	return next
}

// Invert returns the compensating action for a, computed against the state
// the action is about to be applied to. The second result is false when the
// action has no inverse (reconciliation is never rolled back).
func Invert(s State, a Action) (Action, bool) {
	type invertible interface {
		invert(s *State) (Action, bool)
	}
	if inv, ok := a.(invertible); ok {
		return inv.invert(&s)
	}
	return nil, false
}

// Batch applies its actions in order. Compound inverses use it when a
// single dispatch both appended and replaced entities.
type Batch struct {
	Actions []Action
}

func (a Batch) apply(s *State) {
	for _, sub := range a.Actions {
		sub.apply(s)
	}
}

// AddStories appends stories to the local view. A story whose id is already
// present replaces the stale copy in place.
type AddStories struct {
	Stories []Story
}

func (a AddStories) apply(s *State) {
	for _, st := range a.Stories {
		if cur := s.StoryByID(st.ID); cur != nil {
			*cur = st.clone()
			continue
		}
		s.Stories = append(s.Stories, st.clone())
	}
}

// The inverse removes what was appended and puts back the copies that were
// replaced in place.
func (a AddStories) invert(s *State) (Action, bool) {
	var appended []int64
	var replaced []Story
	for _, st := range a.Stories {
		if cur := s.StoryByID(st.ID); cur != nil {
			replaced = append(replaced, cur.clone())
		} else {
			appended = append(appended, st.ID)
		}
	}
	inv := Batch{}
	if len(appended) > 0 {
		inv.Actions = append(inv.Actions, RemoveStories{IDs: appended})
	}
	if len(replaced) > 0 {
		inv.Actions = append(inv.Actions, AddStories{Stories: replaced})
	}
	return inv, true
}

// RemoveStories drops stories by id. Exists as the inverse of AddStories.
type RemoveStories struct {
	IDs []int64
}

func (a RemoveStories) apply(s *State) {
	for _, id := range a.IDs {
		for i := range s.Stories {
			if s.Stories[i].ID == id {
				s.Stories = append(s.Stories[:i], s.Stories[i+1:]...)
				break
			}
		}
	}
}

// ToggleStoryLike flips the actor's membership in the story's like set.
// Applying the same toggle twice restores the original state, so it is its
// own inverse.
type ToggleStoryLike struct {
	StoryID int64
	ActorID int64
}

func (a ToggleStoryLike) apply(s *State) {
	if st := s.StoryByID(a.StoryID); st != nil {
		st.Likes = toggleMember(st.Likes, a.ActorID)
	}
}

func (a ToggleStoryLike) invert(*State) (Action, bool) { return a, true }

// ToggleCommentLike flips the actor's membership in a comment's like set.
type ToggleCommentLike struct {
	CommentID int64
	ActorID   int64
}

func (a ToggleCommentLike) apply(s *State) {
	if _, c := s.CommentByID(a.CommentID); c != nil {
		c.Likes = toggleMember(c.Likes, a.ActorID)
	}
}

func (a ToggleCommentLike) invert(*State) (Action, bool) { return a, true }

// AddComment inserts a comment at the end of the story's list. The comment
// carries a temp id until ReplaceComment reconciles it.
type AddComment struct {
	StoryID int64
	Comment Comment
}

func (a AddComment) apply(s *State) {
	if st := s.StoryByID(a.StoryID); st != nil {
		st.Comments = append(st.Comments, a.Comment.clone())
	}
}

func (a AddComment) invert(*State) (Action, bool) {
	return DeleteComment{StoryID: a.StoryID, CommentID: a.Comment.ID}, true
}

// ReplaceComment swaps a temp comment for the authoritative one in place,
// preserving list position, and rewrites any reply that referenced the temp
// id as its parent. Keyed by the temp id, so out-of-order responses only
// ever touch the entity they belong to. Not invertible.
type ReplaceComment struct {
	TempID  int64
	Comment Comment
}

func (a ReplaceComment) apply(s *State) {
	for i := range s.Stories {
		st := &s.Stories[i]
		for j := range st.Comments {
			if st.Comments[j].ID == a.TempID {
				replacement := a.Comment.clone()
				// Local likes placed on the temp comment survive the swap.
				for _, actor := range st.Comments[j].Likes {
					if !hasMember(replacement.Likes, actor) {
						replacement.Likes = append(replacement.Likes, actor)
					}
				}
				st.Comments[j] = replacement
			}
			if st.Comments[j].ParentID == a.TempID {
				st.Comments[j].ParentID = a.Comment.ID
			}
		}
	}
}

// DeleteComment removes a comment and any replies threaded under it.
type DeleteComment struct {
	StoryID   int64
	CommentID int64
}

func (a DeleteComment) apply(s *State) {
	st := s.StoryByID(a.StoryID)
	if st == nil {
		return
	}
	doomed := map[int64]bool{a.CommentID: true}
	// Replies only ever point backwards in the list, so one pass collects
	// the whole subtree.
	for _, c := range st.Comments {
		if doomed[c.ParentID] {
			doomed[c.ID] = true
		}
	}
	kept := st.Comments[:0]
	for _, c := range st.Comments {
		if !doomed[c.ID] {
			kept = append(kept, c)
		}
	}
	st.Comments = kept
}

func (a DeleteComment) invert(s *State) (Action, bool) {
	st := s.StoryByID(a.StoryID)
	if st == nil {
		return nil, false
	}
	doomed := map[int64]bool{a.CommentID: true}
	for _, c := range st.Comments {
		if doomed[c.ParentID] {
			doomed[c.ID] = true
		}
	}
	inv := InsertComments{StoryID: a.StoryID}
	for i, c := range st.Comments {
		if doomed[c.ID] {
			inv.Entries = append(inv.Entries, CommentAt{Comment: c.clone(), Index: i})
		}
	}
	if len(inv.Entries) == 0 {
		return nil, false
	}
	return inv, true
}

// CommentAt pairs a comment with its original list index for re-insertion.
type CommentAt struct {
	Comment Comment
	Index   int
}

// InsertComments restores previously removed comments at their original
// positions. Exists as the inverse of DeleteComment.
type InsertComments struct {
	StoryID int64
	Entries []CommentAt
}

func (a InsertComments) apply(s *State) {
	st := s.StoryByID(a.StoryID)
	if st == nil {
		return
	}
	for _, e := range a.Entries {
		idx := e.Index
		if idx > len(st.Comments) {
			idx = len(st.Comments)
		}
		st.Comments = append(st.Comments, Comment{})
		copy(st.Comments[idx+1:], st.Comments[idx:])
		st.Comments[idx] = e.Comment.clone()
	}
}

// DeleteStory removes a story from the local view.
type DeleteStory struct {
	StoryID int64
}

func (a DeleteStory) apply(s *State) {
	for i := range s.Stories {
		if s.Stories[i].ID == a.StoryID {
			s.Stories = append(s.Stories[:i], s.Stories[i+1:]...)
			return
		}
	}
}

func (a DeleteStory) invert(s *State) (Action, bool) {
	for i, st := range s.Stories {
		if st.ID == a.StoryID {
			return InsertStoryAt{Story: st.clone(), Index: i}, true
		}
	}
	return nil, false
}

// InsertStoryAt restores a removed story at its original queue position.
type InsertStoryAt struct {
	Story Story
	Index int
}

func (a InsertStoryAt) apply(s *State) {
	idx := a.Index
	if idx > len(s.Stories) {
		idx = len(s.Stories)
	}
	s.Stories = append(s.Stories, Story{})
	copy(s.Stories[idx+1:], s.Stories[idx:])
	s.Stories[idx] = a.Story.clone()
}
