package stories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyline-backend/models/story"
	svc "storyline-backend/services/stories"
)

// makeHighlight creates n live stories for owner and collects them into one
// highlight.
func makeHighlight(t *testing.T, s *svc.Service, ctx context.Context, owner uint, n int) *story.Highlight {
	t.Helper()
	refs := make([]svc.LinkRef, 0, n)
	for i := 0; i < n; i++ {
		st, err := s.CreateStory(ctx, owner, svc.CreateStoryInput{MediaURL: "https://cdn.example.com/a.jpg"})
		require.NoError(t, err)
		id := st.ID
		refs = append(refs, svc.LinkRef{StoryID: &id})
	}
	h, err := s.CreateHighlight(ctx, owner, svc.CreateHighlightInput{Title: "reel", Items: refs})
	require.NoError(t, err)
	return h
}

func TestReorderReplacesWholeOrder(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	h := makeHighlight(t, s, ctx, owner, 3)

	a, b, c := h.Links[0], h.Links[1], h.Links[2]
	got, err := s.ReorderHighlightLinks(ctx, owner, h.ID, []uint{c.ID, a.ID, b.ID})
	require.NoError(t, err)

	require.Len(t, got.Links, 3)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, []uint{got.Links[0].ID, got.Links[1].ID, got.Links[2].ID})
	for i, l := range got.Links {
		assert.Equal(t, i, l.Position, "positions must read back as 0..n-1")
	}
}

func TestReorderRejectsBadPermutations(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	h := makeHighlight(t, s, ctx, owner, 3)
	a, b := h.Links[0], h.Links[1]

	_, err := s.ReorderHighlightLinks(ctx, owner, h.ID, []uint{a.ID, b.ID})
	assert.True(t, svc.IsCode(err, svc.CodeInvalid), "short permutation")

	_, err = s.ReorderHighlightLinks(ctx, owner, h.ID, []uint{a.ID, a.ID, b.ID})
	assert.True(t, svc.IsCode(err, svc.CodeInvalid), "duplicate link id")

	_, err = s.ReorderHighlightLinks(ctx, owner, h.ID, []uint{a.ID, b.ID, 99999})
	assert.True(t, svc.IsCode(err, svc.CodeInvalid), "foreign link id")
}

func TestRemoveLinkCompactsPositions(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	h := makeHighlight(t, s, ctx, owner, 3)

	require.NoError(t, s.RemoveHighlightLink(ctx, owner, h.Links[1].ID))

	got, err := s.GetHighlight(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, got.Links, 2)
	assert.Equal(t, 0, got.Links[0].Position)
	assert.Equal(t, 1, got.Links[1].Position)
	assert.Equal(t, h.Links[0].ID, got.Links[0].ID)
	assert.Equal(t, h.Links[2].ID, got.Links[1].ID)
}

func TestRemovingLastLinkDeletesHighlight(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	h := makeHighlight(t, s, ctx, owner, 1)

	require.NoError(t, s.RemoveHighlightLink(ctx, owner, h.Links[0].ID))

	// A highlight with zero links must not be observable.
	_, err := s.GetHighlight(ctx, h.ID)
	assert.True(t, svc.IsCode(err, svc.CodeNotFound))
}

func TestAddItemsAppendAfterMax(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	h := makeHighlight(t, s, ctx, owner, 2)

	st, err := s.CreateStory(ctx, owner, svc.CreateStoryInput{MediaURL: "https://cdn.example.com/c.jpg"})
	require.NoError(t, err)

	got, err := s.AddHighlightItems(ctx, owner, h.ID, []svc.LinkRef{{StoryID: &st.ID}})
	require.NoError(t, err)
	require.Len(t, got.Links, 3)
	assert.Equal(t, 2, got.Links[2].Position)
}

func TestLinkMustReferenceExactlyOnePool(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")

	st, err := s.CreateStory(ctx, owner, svc.CreateStoryInput{MediaURL: "https://cdn.example.com/a.jpg"})
	require.NoError(t, err)
	arch := story.ArchivedStory{OriginalStoryID: 9999, UserID: owner, MediaURL: "https://cdn.example.com/b.jpg"}
	require.NoError(t, db.Create(&arch).Error)

	_, err = s.CreateHighlight(ctx, owner, svc.CreateHighlightInput{
		Title: "bad",
		Items: []svc.LinkRef{{StoryID: &st.ID, ArchivedStoryID: &arch.ID}},
	})
	assert.True(t, svc.IsCode(err, svc.CodeInvalid), "both pools set")

	_, err = s.CreateHighlight(ctx, owner, svc.CreateHighlightInput{
		Title: "bad",
		Items: []svc.LinkRef{{}},
	})
	assert.True(t, svc.IsCode(err, svc.CodeInvalid), "no pool set")

	// Mixed pools across links are fine.
	h, err := s.CreateHighlight(ctx, owner, svc.CreateHighlightInput{
		Title: "mixed",
		Items: []svc.LinkRef{{StoryID: &st.ID}, {ArchivedStoryID: &arch.ID}},
	})
	require.NoError(t, err)
	assert.Len(t, h.Links, 2)
}

func TestHighlightOwnership(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	stranger := seedUser(t, db, "stranger")

	st, err := s.CreateStory(ctx, owner, svc.CreateStoryInput{MediaURL: "https://cdn.example.com/a.jpg"})
	require.NoError(t, err)

	_, err = s.CreateHighlight(ctx, stranger, svc.CreateHighlightInput{
		Title: "steal",
		Items: []svc.LinkRef{{StoryID: &st.ID}},
	})
	assert.True(t, svc.IsCode(err, svc.CodeUnauthorized))

	h := makeHighlight(t, s, ctx, owner, 1)
	_, err = s.ReorderHighlightLinks(ctx, stranger, h.ID, []uint{h.Links[0].ID})
	assert.True(t, svc.IsCode(err, svc.CodeUnauthorized))

	err = s.RemoveHighlightLink(ctx, stranger, h.Links[0].ID)
	assert.True(t, svc.IsCode(err, svc.CodeUnauthorized))
}

func TestCreateHighlightRequiresItems(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")

	_, err := s.CreateHighlight(ctx, owner, svc.CreateHighlightInput{Title: "empty"})
	assert.True(t, svc.IsCode(err, svc.CodeInvalid))
}
