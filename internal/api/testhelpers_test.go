package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/harshshukla07/SwiftCV/internal/auth"
	"github.com/harshshukla07/SwiftCV/internal/database"
	"github.com/harshshukla07/SwiftCV/internal/llm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.User{}, &database.Resume{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()
	svc, err := auth.NewAuthService("test-secret", 72*time.Hour)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	return svc
}

// unreachableRedis returns a client whose calls fail fast; the login rate
// limiter is expected to degrade open against it.
func unreachableRedis() redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func jsonContext(t *testing.T, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func seedUser(t *testing.T, db *gorm.DB, email string) database.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := database.User{Name: "Test User", Email: email, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

type fakeUploader struct {
	url              string
	err              error
	removeBackground bool
	calls            int
}

func (f *fakeUploader) Enabled() bool { return true }

func (f *fakeUploader) Upload(_ context.Context, _ io.Reader, _ string, removeBackground bool) (string, error) {
	f.calls++
	f.removeBackground = removeBackground
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

// fakeGenerator satisfies TextGenerator with a canned reply. ExtractResume
// runs the reply through the real parser so malformed replies surface the
// same errors production does.
type fakeGenerator struct {
	enabled bool
	reply   string
	err     error
}

func (f *fakeGenerator) Enabled() bool { return f.enabled }

func (f *fakeGenerator) EnhanceSummary(context.Context, string) (string, error) {
	return f.reply, f.err
}

func (f *fakeGenerator) EnhanceJobDescription(context.Context, string) (string, error) {
	return f.reply, f.err
}

func (f *fakeGenerator) ExtractResume(context.Context, string) (*llm.Extraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return llm.ParseExtraction(f.reply)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d body=%s", want, w.Code, w.Body.String())
	}
}
