package dao

import (
	"context"
	"strings"
	"testing"
	"time"

	"dlh/dlh/sources/psql"
	"dlh/dlh/sources/psql/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := psql.NewDatabaseWithDialector(context.Background(), sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	// one connection, one in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(database.Close)
	return database.DB
}

func newProfile(t *testing.T, db *gorm.DB, email, name string) *models.Profile {
	t.Helper()
	p := &models.Profile{Email: email, FullName: name, PasswordHash: "x"}
	require.NoError(t, NewProfileDAO(db).CreateProfile(context.Background(), p, models.RoleStudent))
	return p
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "short question", DeriveTitle("  short question "))

	exact := strings.Repeat("a", 50)
	assert.Equal(t, exact, DeriveTitle(exact))

	long := strings.Repeat("b", 51)
	assert.Equal(t, strings.Repeat("b", 50)+"...", DeriveTitle(long))

	accented := strings.Repeat("é", 60)
	assert.Equal(t, strings.Repeat("é", 50)+"...", DeriveTitle(accented))
}

func TestSaveMessageTitlesSessionOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	p := newProfile(t, db, "a@dlh.org", "Ada")
	chats := NewChatDAO(db)

	s, err := chats.CreateSession(ctx, p.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTitle, s.Title)

	_, err = chats.SaveMessage(ctx, s.ID, models.MessageRoleAssistant, "Welcome!", false)
	require.NoError(t, err)
	got, err := chats.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTitle, got.Title)

	first := "How do I center a div in CSS when the parent uses flexbox layout?"
	_, err = chats.SaveMessage(ctx, s.ID, models.MessageRoleUser, first, false)
	require.NoError(t, err)
	_, err = chats.SaveMessage(ctx, s.ID, models.MessageRoleUser, "second question", false)
	require.NoError(t, err)

	got, err = chats.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, DeriveTitle(first), got.Title)

	msgs, err := chats.ListMessages(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "Welcome!", msgs[0].Content)
	assert.Equal(t, "second question", msgs[2].Content)
}

func TestSaveMessageUnknownSession(t *testing.T) {
	_, err := NewChatDAO(newTestDB(t)).SaveMessage(context.Background(), uuid.New(), models.MessageRoleUser, "hi", false)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteSessionRemovesMessages(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	p := newProfile(t, db, "a@dlh.org", "Ada")
	chats := NewChatDAO(db)

	s, err := chats.CreateSession(ctx, p.ID, "Algebra", nil)
	require.NoError(t, err)
	_, err = chats.SaveMessage(ctx, s.ID, models.MessageRoleUser, "hi", false)
	require.NoError(t, err)

	require.NoError(t, chats.DeleteSession(ctx, s.ID))
	got, err := chats.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	var n int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Where("session_id = ?", s.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestProfileLookupAndSearch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	profiles := NewProfileDAO(db)
	ada := newProfile(t, db, " Ada@DLH.org ", "Ada Lovelace")
	newProfile(t, db, "grace@dlh.org", "Grace Hopper")

	got, err := profiles.GetProfileByEmail(ctx, "ada@dlh.org")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ada.ID, got.ID)

	missing, err := profiles.GetProfileByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	found, err := profiles.SearchProfiles(ctx, "LOVE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ada Lovelace", found[0].FullName)

	all, err := profiles.SearchProfiles(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	roles, err := NewRoleDAO(db).Roles(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleStudent}, roles)
}

func TestToggles(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	profiles := NewProfileDAO(db)
	p := newProfile(t, db, "a@dlh.org", "Ada")

	got, err := profiles.ToggleSuspended(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSuspended)
	got, err = profiles.ToggleSuspended(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSuspended)

	got, err = profiles.ToggleVerified(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	got, err = profiles.ToggleVerified(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteProfileCascades(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	p := newProfile(t, db, "a@dlh.org", "Ada")
	chats := NewChatDAO(db)
	s, err := chats.CreateSession(ctx, p.ID, "", nil)
	require.NoError(t, err)
	_, err = chats.SaveMessage(ctx, s.ID, models.MessageRoleUser, "hi", false)
	require.NoError(t, err)
	require.NoError(t, NewImageDAO(db).CreateImage(ctx, &models.GeneratedImage{UserID: p.ID, Prompt: "cat", ImageURL: "u", ObjectKey: "k"}))

	require.NoError(t, NewProfileDAO(db).DeleteProfile(ctx, p.ID))

	for _, m := range []interface{}{&models.Profile{}, &models.UserRole{}, &models.ChatSession{}, &models.ChatMessage{}, &models.GeneratedImage{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
}

func TestSetRoleReplacesRoles(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	roles := NewRoleDAO(db)
	p := newProfile(t, db, "a@dlh.org", "Ada")

	isAdmin, err := roles.IsAdmin(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.NoError(t, roles.SetRole(ctx, p.ID, models.RoleAdmin))
	got, err := roles.Roles(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin}, got)

	isAdmin, err = roles.IsAdmin(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	profile, err := NewProfileDAO(db).GetProfileByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, profile.UserType)
}

func TestCourseListingAndSeed(t *testing.T) {
	ctx := context.Background()
	courses := NewCourseDAO(newTestDB(t))
	now := time.Now()

	require.NoError(t, courses.CreateCourse(ctx, &models.Course{Title: "Web Development", Category: "Technology", IsPublished: true, CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, courses.CreateCourse(ctx, &models.Course{Title: "Data Analysis", Description: "Spreadsheets and charts", Category: "Data", IsPublished: true, CreatedAt: now}))
	require.NoError(t, courses.CreateCourse(ctx, &models.Course{Title: "Draft Course", Category: "Data", IsPublished: false}))

	published, err := courses.ListPublished(ctx, CourseFilter{})
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, "Data Analysis", published[0].Title)

	byCategory, err := courses.ListPublished(ctx, CourseFilter{Category: "Data"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	byQuery, err := courses.ListPublished(ctx, CourseFilter{Query: "charts"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "Data Analysis", byQuery[0].Title)

	added, err := courses.SeedCourses(ctx, []models.Course{
		{Title: "Web Development", IsPublished: true},
		{Title: "Graphic Design", IsPublished: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	all, err := courses.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestImagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	p := newProfile(t, db, "a@dlh.org", "Ada")
	images := NewImageDAO(db)
	now := time.Now()

	for i, prompt := range []string{"old", "mid", "new"} {
		require.NoError(t, images.CreateImage(ctx, &models.GeneratedImage{
			UserID: p.ID, Prompt: prompt, ImageURL: "u", ObjectKey: "k",
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := images.RecentImages(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "new", recent[0].Prompt)

	n, err := images.CountImages(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestBotKnowledge(t *testing.T) {
	ctx := context.Background()
	settings := NewSettingDAO(newTestDB(t))

	v, err := settings.BotKnowledge(ctx)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, settings.SetBotKnowledge(ctx, "Classes start at 9."))
	require.NoError(t, settings.SetBotKnowledge(ctx, "Classes start at 10."))
	v, err = settings.BotKnowledge(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Classes start at 10.", v)

	out, err := settings.AppendBotKnowledge(ctx, "  Fees are waived.  ")
	require.NoError(t, err)
	assert.Equal(t, "Classes start at 10.\n\nFees are waived.", out)

	_, found, err := settings.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}
