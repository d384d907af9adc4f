package controllers

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"dlh/dlh/services/llm"
	"dlh/dlh/services/prompt"
	"dlh/dlh/sources/psql"
	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/sources/psql/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := psql.NewDatabaseWithDialector(context.Background(), sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(database.Close)
	return database.DB
}

func newTestProfile(t *testing.T, db *gorm.DB, email string) *models.Profile {
	t.Helper()
	p := &models.Profile{Email: email, FullName: "Test User", PasswordHash: "x"}
	require.NoError(t, dao.NewProfileDAO(db).CreateProfile(context.Background(), p, models.RoleStudent))
	return p
}

// fakeGateway counts calls and replays a canned stream or error.
type fakeGateway struct {
	mu       sync.Mutex
	calls    int
	messages []llm.Message
	body     string
	err      error
}

func (f *fakeGateway) StreamChat(_ context.Context, messages []llm.Message) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func (f *fakeGateway) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeKnowledge string

func (f fakeKnowledge) BotKnowledge(context.Context) (string, error) { return string(f), nil }

func newTestAssembler(t *testing.T) *prompt.Assembler {
	t.Helper()
	courses, err := prompt.NewCoursePrompts(map[string]string{"web-development": "Teach HTML first."})
	require.NoError(t, err)
	return prompt.NewAssembler("You are the DLH tutor.", fakeKnowledge("Term starts in May."), courses)
}

// fakeStore keeps objects in memory.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	removed []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf.Bytes()
	f.types[key] = contentType
	return "http://objects.test/dlh/" + key, nil
}

func (f *fakeStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func sseDelta(s string) string {
	return `data: {"choices":[{"delta":{"content":"` + s + `"}}]}` + "\n"
}
