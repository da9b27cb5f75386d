package optimistic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func baseState() State {
	return State{Stories: []Story{
		{
			ID:      101,
			OwnerID: 1,
			Likes:   []int64{7},
			Comments: []Comment{
				{ID: 201, AuthorID: 2, Text: "first"},
				{ID: 202, AuthorID: 3, Text: "reply", ParentID: 201},
			},
		},
		{ID: 102, OwnerID: 1},
	}}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := baseState()
	before := s.clone()

	_ = Apply(s, ToggleStoryLike{StoryID: 101, ActorID: 9})
	_ = Apply(s, DeleteComment{StoryID: 101, CommentID: 201})

	if diff := cmp.Diff(before, s); diff != "" {
		t.Errorf("input state mutated (-want +got):\n%s", diff)
	}
}

func TestToggleParity(t *testing.T) {
	s := baseState()
	toggle := ToggleStoryLike{StoryID: 101, ActorID: 9}

	// Any even number of applications restores the original membership;
	// any odd number flips it.
	cur := s
	for i := 1; i <= 6; i++ {
		cur = Apply(cur, toggle)
		got := hasMember(cur.StoryByID(101).Likes, 9)
		want := i%2 == 1
		if got != want {
			t.Fatalf("after %d toggles membership = %v, want %v", i, got, want)
		}
	}
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	s := baseState()
	toggle := ToggleStoryLike{StoryID: 101, ActorID: 7}

	undo, ok := Invert(s, toggle)
	if !ok {
		t.Fatal("toggle must be invertible")
	}
	after := Apply(Apply(s, toggle), undo)
	if diff := cmp.Diff(s, after); diff != "" {
		t.Errorf("toggle+inverse changed state (-want +got):\n%s", diff)
	}
}

func TestReplaceCommentErasesTempID(t *testing.T) {
	alloc := NewAllocator()
	tempID := alloc.Next()
	if !IsTemp(tempID) {
		t.Fatalf("allocator returned non-temp id %d", tempID)
	}

	s := baseState()
	s = Apply(s, AddComment{StoryID: 101, Comment: Comment{ID: tempID, AuthorID: 5, Text: "pending"}})
	// A reply and a like land on the temp comment before the server
	// responds.
	replyTemp := alloc.Next()
	s = Apply(s, AddComment{StoryID: 101, Comment: Comment{ID: replyTemp, AuthorID: 6, Text: "re", ParentID: tempID}})
	s = Apply(s, ToggleCommentLike{CommentID: tempID, ActorID: 6})

	s = Apply(s, ReplaceComment{TempID: tempID, Comment: Comment{ID: 500, AuthorID: 5, Text: "pending"}})

	if _, c := s.CommentByID(tempID); c != nil {
		t.Fatalf("temp id %d still present after reconciliation", tempID)
	}
	_, real := s.CommentByID(500)
	if real == nil {
		t.Fatal("reconciled comment missing")
	}
	if !hasMember(real.Likes, 6) {
		t.Error("optimistic like lost during reconciliation")
	}
	if real != nil && s.StoryByID(101).Comments[2].ID != 500 {
		t.Errorf("reconciliation moved the comment: order = %v", commentIDs(s.StoryByID(101)))
	}
	_, reply := s.CommentByID(replyTemp)
	if reply == nil || reply.ParentID != 500 {
		t.Errorf("reply parent not rewritten, got %+v", reply)
	}
}

func TestReconciliationKeyedByIdentity(t *testing.T) {
	alloc := NewAllocator()
	tempA, tempB := alloc.Next(), alloc.Next()

	s := baseState()
	s = Apply(s, AddComment{StoryID: 101, Comment: Comment{ID: tempA, AuthorID: 5, Text: "a"}})
	s = Apply(s, AddComment{StoryID: 101, Comment: Comment{ID: tempB, AuthorID: 5, Text: "b"}})

	// Responses arrive out of order: B first, then A. Each swap touches
	// only its own entity.
	s = Apply(s, ReplaceComment{TempID: tempB, Comment: Comment{ID: 601, AuthorID: 5, Text: "b"}})
	s = Apply(s, ReplaceComment{TempID: tempA, Comment: Comment{ID: 600, AuthorID: 5, Text: "a"}})

	got := commentIDs(s.StoryByID(101))
	want := []int64{201, 202, 600, 601}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("comment order after out-of-order reconciliation (-want +got):\n%s", diff)
	}
}

func TestStaleReplaceIsNoOp(t *testing.T) {
	s := baseState()
	before := s.clone()

	// A straggling response for an entity that no longer exists locally
	// must not disturb anything.
	s = Apply(s, ReplaceComment{TempID: -99, Comment: Comment{ID: 700, Text: "ghost"}})
	if diff := cmp.Diff(before, s); diff != "" {
		t.Errorf("stale reconciliation changed state (-want +got):\n%s", diff)
	}
}

func TestDeleteCommentInverseRestoresThread(t *testing.T) {
	s := baseState()
	del := DeleteComment{StoryID: 101, CommentID: 201}

	undo, ok := Invert(s, del)
	if !ok {
		t.Fatal("delete must be invertible")
	}

	deleted := Apply(s, del)
	if got := commentIDs(deleted.StoryByID(101)); len(got) != 0 {
		t.Fatalf("expected comment and its reply removed, got %v", got)
	}

	restored := Apply(deleted, undo)
	if diff := cmp.Diff(s, restored); diff != "" {
		t.Errorf("inverse did not restore thread (-want +got):\n%s", diff)
	}
}

func TestDeleteStoryInverseRestoresPosition(t *testing.T) {
	s := baseState()
	del := DeleteStory{StoryID: 101}

	undo, ok := Invert(s, del)
	if !ok {
		t.Fatal("delete must be invertible")
	}
	restored := Apply(Apply(s, del), undo)
	if diff := cmp.Diff(s, restored); diff != "" {
		t.Errorf("inverse did not restore story position (-want +got):\n%s", diff)
	}
}

func TestAddStoriesInverse(t *testing.T) {
	s := baseState()
	add := AddStories{Stories: []Story{{ID: 103, OwnerID: 2}}}

	undo, ok := Invert(s, add)
	if !ok {
		t.Fatal("add must be invertible")
	}
	restored := Apply(Apply(s, add), undo)
	if diff := cmp.Diff(s, restored); diff != "" {
		t.Errorf("inverse did not remove added stories (-want +got):\n%s", diff)
	}
}

func TestAddStoriesInverseRestoresReplaced(t *testing.T) {
	s := baseState()
	// One refresh replaces 101 in place and appends 103.
	add := AddStories{Stories: []Story{
		{ID: 101, OwnerID: 1, MediaURL: "https://cdn.example.com/new.jpg"},
		{ID: 103, OwnerID: 2},
	}}

	undo, ok := Invert(s, add)
	if !ok {
		t.Fatal("add must be invertible")
	}

	applied := Apply(s, add)
	if got := applied.StoryByID(101); len(got.Comments) != 0 {
		t.Fatalf("replacement did not take, comments = %v", commentIDs(got))
	}

	// The inverse must bring back the replaced copy, not just drop the id.
	restored := Apply(applied, undo)
	if diff := cmp.Diff(s, restored); diff != "" {
		t.Errorf("inverse lost the replaced story (-want +got):\n%s", diff)
	}
}

func TestApplyPreservesAbsentCollections(t *testing.T) {
	// Stories that never held likes or comments must round-trip without
	// growing empty collections.
	s := State{Stories: []Story{{ID: 1}, {ID: 2, Likes: []int64{5}}}}

	got := Apply(s, ToggleStoryLike{StoryID: 2, ActorID: 9})
	got = Apply(got, ToggleStoryLike{StoryID: 2, ActorID: 9})

	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("untouched collections changed shape (-want +got):\n%s", diff)
	}
}

func commentIDs(st *Story) []int64 {
	if st == nil {
		return nil
	}
	out := make([]int64, len(st.Comments))
	for i, c := range st.Comments {
		out[i] = c.ID
	}
	return out
}
