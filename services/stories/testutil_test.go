package stories_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storyline-backend/models/story"
	"storyline-backend/models/users"
	svc "storyline-backend/services/stories"
)

// testClock lets archival tests move time past a story's TTL without
// sleeping.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*svc.Service, *gorm.DB, *testClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	// Autocommit keeps rows written by race-simulation callbacks visible
	// after the racing insert fails.
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&users.User{},
		&story.Story{},
		&story.Reaction{},
		&story.View{},
		&story.Comment{},
		&story.Notification{},
		&story.ArchivedStory{},
		&story.ArchivedReaction{},
		&story.ArchivedView{},
		&story.ArchivedComment{},
		&story.Highlight{},
		&story.HighlightLink{},
	))

	clock := &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := svc.New(db, slogt.New(t)).WithClock(clock.Now)
	return s, db, clock
}

func seedUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	u := users.User{Name: name, Email: name + "@example.com", AvatarURL: "https://cdn.example.com/" + name + ".png"}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}
