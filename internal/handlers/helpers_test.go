// helpers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/handlers"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testEmail = "learner@example.com"

// httpRequestDetails はHTTPリクエストの送信に必要な情報をまとめます。
type httpRequestDetails struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
}

// testServer はモックのサービスを載せた実ルーターです。
type testServer struct {
	server    *httptest.Server
	auth      *mocks.AuthService
	study     *mocks.StudyService
	stats     *mocks.StatsService
	flashcard *mocks.FlashcardService
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "SkillSync"
	cfg.Auth.Enabled = false
	cfg.Study.DefaultLimit = 20
	cfg.Study.MaxLimit = 100
	cfg.RateLimit.AuthRequestsPerMinute = 1000
	cfg.RateLimit.AuthBurst = 1000
	return cfg
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	ts := &testServer{
		auth:      mocks.NewAuthService(t),
		study:     mocks.NewStudyService(t),
		stats:     mocks.NewStatsService(t),
		flashcard: mocks.NewFlashcardService(t),
	}
	router := handlers.NewRouter(cfg, testLogger, handlers.Handlers{
		Auth:      handlers.NewAuthHandler(ts.auth),
		Study:     handlers.NewStudyHandler(ts.study, cfg.Study.DefaultLimit),
		Stats:     handlers.NewStatsHandler(ts.stats),
		Flashcard: handlers.NewFlashcardHandler(ts.flashcard),
		Health:    handlers.NewHealthHandler(newTestDB(t)),
	})
	ts.server = httptest.NewServer(router)
	t.Cleanup(ts.server.Close)
	return ts
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithConfig(t, testConfig())
}

// sendRequest はHTTPリクエストを送信し、ステータスコードとボディを返します。
func sendRequest(t *testing.T, server *httptest.Server, details httpRequestDetails) (int, []byte) {
	t.Helper()

	var reqBodyReader io.Reader
	if details.Body != nil {
		if strPayload, ok := details.Body.(string); ok {
			reqBodyReader = strings.NewReader(strPayload)
		} else {
			reqBodyBytes, err := json.Marshal(details.Body)
			require.NoError(t, err, "Failed to marshal request body")
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	req, err := http.NewRequest(details.Method, server.URL+details.Path, reqBodyReader)
	require.NoError(t, err, "Failed to create request")

	if reqBodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range details.Headers {
		req.Header.Set(key, value)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err, "Failed to execute request")
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	return resp.StatusCode, respBodyBytes
}

// withCaller は開発用認証ヘッダーを付けます
func withCaller() map[string]string {
	return map[string]string{"X-User-Email": testEmail}
}

// verifyErrorCode はエラーレスポンスのコードを検証します。
func verifyErrorCode(t *testing.T, bodyBytes []byte, expectedCode string) {
	t.Helper()
	var errResp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(bodyBytes, &errResp), "raw body: %s", string(bodyBytes))
	assert.Equal(t, expectedCode, errResp.Error.Code)
}

func intPtr(v int) *int { return &v }
