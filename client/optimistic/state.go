// Package optimistic is the client-side mutation engine. Apply is a pure,
// synchronous state transition used before any network round-trip; Invert
// produces the compensating action applied when the authoritative store
// rejects the mutation, and ReplaceComment reconciles temp ids in place
// once the server assigns real ones.
package optimistic

import "time"

// Story is the client-local projection of a live story. Likes and Viewers
// are membership sets of actor ids; Comments keep their display order.
type Story struct {
	ID                 int64
	OwnerID            int64
	MediaURL           string
	CreatedAt          time.Time
	ExpireAt           time.Time
	ShowReactionCounts bool
	Likes              []int64
	Viewers            []int64
	Comments           []Comment
}

// Comment as displayed in the viewer. ParentID is zero for top-level
// comments and may hold a temp id until the parent is reconciled.
type Comment struct {
	ID       int64
	AuthorID int64
	Text     string
	ParentID int64
	Likes    []int64
}

// State is the whole locally-mutated view. Values are treated as immutable:
// Apply returns a fresh copy and never aliases slices with its input.
type State struct {
	Stories []Story
}

// StoryByID returns a pointer into s, or nil. Callers must not retain the
// pointer across Apply calls.
func (s *State) StoryByID(id int64) *Story {
	for i := range s.Stories {
		if s.Stories[i].ID == id {
			return &s.Stories[i]
		}
	}
	return nil
}

// CommentByID searches every story. Returns the owning story index and the
// comment, or (-1, nil).
func (s *State) CommentByID(id int64) (int, *Comment) {
	for i := range s.Stories {
		for j := range s.Stories[i].Comments {
			if s.Stories[i].Comments[j].ID == id {
				return i, &s.Stories[i].Comments[j]
			}
		}
	}
	return -1, nil
}

// clone preserves nil versus empty for every slice so a round-tripped state
// compares equal to the original.
func (s State) clone() State {
	out := s
	if s.Stories != nil {
		out.Stories = make([]Story, len(s.Stories))
		for i, st := range s.Stories {
			out.Stories[i] = st.clone()
		}
	}
	return out
}

func (s Story) clone() Story {
	out := s
	out.Likes = append([]int64(nil), s.Likes...)
	out.Viewers = append([]int64(nil), s.Viewers...)
	if s.Comments != nil {
		out.Comments = make([]Comment, len(s.Comments))
		for i, c := range s.Comments {
			out.Comments[i] = c.clone()
		}
	}
	return out
}

func (c Comment) clone() Comment {
	out := c
	out.Likes = append([]int64(nil), c.Likes...)
	return out
}

// toggleMember flips id's membership in set and returns the new set.
func toggleMember(set []int64, id int64) []int64 {
	for i, v := range set {
		if v == id {
			return append(set[:i], set[i+1:]...)
		}
	}
	return append(set, id)
}

func hasMember(set []int64, id int64) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}
