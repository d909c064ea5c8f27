package integration_tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const (
	testPort         = "8081"
	serverBaseURL    = "http://localhost:" + testPort
	testJwtSecret    = "a-very-secure-secret-for-testing-only" // Fixed secret for predictable tokens
	testKeyPrefix    = "itest_"
	readinessTimeout = 15 * time.Second       // Max time to wait for server start
	readinessPoll    = 200 * time.Millisecond // How often to check if server is ready
)

var (
	httpClient = &http.Client{Timeout: 10 * time.Second}

	// testDbPath is set by TestMain to a file inside a temp dir.
	testDbPath string
)

// --- Test Main: Setup & Teardown ---

func TestMain(m *testing.M) {
	log.Println("INFO: Starting integration test setup...")

	workDir, err := os.MkdirTemp("", "empowerher-itest-")
	if err != nil {
		log.Fatalf("FATAL: Failed to create work dir: %v", err)
	}
	serverBinaryPath := filepath.Join(workDir, "app_binary")
	testDbPath = filepath.Join(workDir, "test_data.json")

	// --- 1. Build the server binary ---
	log.Println("INFO: Building server binary...")
	buildCmd := exec.Command("go", "build", "-o", serverBinaryPath, "..")
	buildOutput, err := buildCmd.CombinedOutput()
	if err != nil {
		log.Fatalf("FATAL: Failed to build server binary: %v\nOutput:\n%s", err, string(buildOutput))
	}

	// --- 2. Run the server with file storage ---
	serverCmd := exec.Command(serverBinaryPath)
	serverCmd.Dir = workDir
	serverCmd.Env = append(os.Environ(),
		"EMPOWERHER_STORAGE=file",
		"EMPOWERHER_DB_FILE_PATH="+testDbPath,
		"EMPOWERHER_JWT_SECRET="+testJwtSecret,
		"EMPOWERHER_LISTEN_PORT="+testPort,
		"EMPOWERHER_KEY_PREFIX="+testKeyPrefix,
		"EMPOWERHER_TIMEZONE=UTC",
		"EMPOWERHER_BCRYPT_COST=4",
		"EMPOWERHER_ENABLE_BACKUP=false",
		"EMPOWERHER_LOG_MODE=prod",
	)
	serverCmd.Stdout = os.Stdout
	serverCmd.Stderr = os.Stderr
	if err := serverCmd.Start(); err != nil {
		log.Fatalf("FATAL: Failed to start server process: %v", err)
	}
	log.Printf("INFO: Server process started (PID: %d)", serverCmd.Process.Pid)

	// --- 3. Wait for the server to be ready ---
	if !waitForServerReady(serverBaseURL+"/health", readinessTimeout) {
		_ = serverCmd.Process.Kill()
		log.Fatalf("FATAL: Server did not become ready within %v", readinessTimeout)
	}

	// --- 4. Run the actual tests ---
	exitCode := m.Run()

	// --- 5. Teardown ---
	if err := serverCmd.Process.Signal(syscall.SIGTERM); err != nil {
		log.Printf("WARN: Failed to send SIGTERM to server process: %v", err)
	}
	done := make(chan struct{})
	go func() {
		_, _ = serverCmd.Process.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		if err := serverCmd.Process.Kill(); err != nil && !strings.Contains(err.Error(), "process already finished") {
			log.Printf("WARN: Failed to kill server process: %v", err)
		}
	}

	if err := os.RemoveAll(workDir); err != nil {
		log.Printf("WARN: Failed to remove work dir '%s': %v", workDir, err)
	}
	os.Exit(exitCode)
}

// --- Helper Functions ---

// waitForServerReady polls a URL until it gets a 200 OK or times out.
func waitForServerReady(url string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := httpClient.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(readinessPoll)
	}
	return false
}

// makeRequest sends an optional JSON body and decodes the response into target when given.
func makeRequest(t *testing.T, method, urlPath, authToken string, body, target interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body for %s %s", method, urlPath)
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, serverBaseURL+urlPath, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := httpClient.Do(req)
	require.NoError(t, err, "failed to execute request %s %s", method, urlPath)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if target != nil && len(respBody) > 0 {
		require.NoError(t, json.Unmarshal(respBody, target), "decode %s %s: %s", method, urlPath, string(respBody))
	}
	return resp
}

// --- Response Shapes ---

type authResponse struct {
	Token   string `json:"token"`
	Profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"profile"`
}

type userStats struct {
	TotalPoints   int      `json:"total_points"`
	CurrentStreak int      `json:"current_streak"`
	LongestStreak int      `json:"longest_streak"`
	Level         int      `json:"level"`
	BadgesEarned  []string `json:"badges_earned"`
	LastActivity  string   `json:"last_activity"`
}

type awardResult struct {
	Progress  map[string]interface{} `json:"progress"`
	Stats     *userStats             `json:"stats"`
	Activity  map[string]interface{} `json:"activity"`
	NewBadges []string               `json:"new_badges"`
}

type dashboard struct {
	Stats          *userStats               `json:"stats"`
	Badges         []map[string]interface{} `json:"badges"`
	RecentActivity []map[string]interface{} `json:"recent_activity"`
}

// --- Workflow ---

func TestAwardWorkflow(t *testing.T) {
	var token string

	t.Run("Dashboard Before Any Progress", func(t *testing.T) {
		var d dashboard
		resp := makeRequest(t, http.MethodGet, "/dashboard", "", nil, &d)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Nil(t, d.Stats)
		assert.Empty(t, d.RecentActivity)
	})

	t.Run("Optional Sign Up", func(t *testing.T) {
		var auth authResponse
		resp := makeRequest(t, http.MethodPost, "/auth/signup", "", map[string]string{
			"email": "learner@example.com", "password": "password123", "first_name": "Adaeze",
		}, &auth)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.NotEmpty(t, auth.Token)
		token = auth.Token

		var me map[string]interface{}
		resp = makeRequest(t, http.MethodGet, "/profiles/me", token, nil, &me)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, me["guest"])
		assert.Equal(t, "learner@example.com", me["email"])
	})

	t.Run("Complete Lessons", func(t *testing.T) {
		lesson := map[string]interface{}{
			"module_type": "legal_rights", "lesson_id": "tenancy", "lesson_title": "Tenancy basics",
			"completion_percentage": 100, "points_earned": 60,
		}
		var first awardResult
		resp := makeRequest(t, http.MethodPost, "/progress/lessons", token, lesson, &first)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"first_lesson"}, first.NewBadges)
		assert.Equal(t, 60, first.Stats.TotalPoints)
		assert.Equal(t, 1, first.Stats.CurrentStreak)

		// Progress is shared with guests, so the second lesson is sent without a token.
		lesson["lesson_id"] = "workplace"
		lesson["lesson_title"] = "Workplace rights"
		var second awardResult
		resp = makeRequest(t, http.MethodPost, "/progress/lessons", "", lesson, &second)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"century", "legal_expert"}, second.NewBadges)
		assert.Equal(t, 120, second.Stats.TotalPoints)
		assert.Equal(t, 1, second.Stats.Level)
	})

	t.Run("Daily Challenge Counts Once", func(t *testing.T) {
		challenge := map[string]interface{}{"challenge_id": "mirror-talk", "title": "Mirror talk", "points": 15}
		var res awardResult
		resp := makeRequest(t, http.MethodPost, "/progress/challenges", "", challenge, &res)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 135, res.Stats.TotalPoints)
		assert.Equal(t, "challenge", res.Activity["type"])

		resp = makeRequest(t, http.MethodPost, "/progress/challenges", "", challenge, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Query Progress Records", func(t *testing.T) {
		var page struct {
			Data  []map[string]interface{} `json:"data"`
			Total int                      `json:"total"`
		}
		path := "/entities/TrainingProgress?content_query=module_type%20equals%20legal_rights" +
			"&content_query=and&content_query=completion_percentage%20equals%20100&sort_by=lesson_id"
		resp := makeRequest(t, http.MethodGet, path, "", nil, &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 2, page.Total)
		assert.Equal(t, "tenancy", page.Data[0]["lesson_id"])
		assert.Equal(t, "workplace", page.Data[1]["lesson_id"])
	})

	t.Run("Dashboard After Progress", func(t *testing.T) {
		var d dashboard
		resp := makeRequest(t, http.MethodGet, "/dashboard", "", nil, &d)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, d.Stats)
		assert.Equal(t, 135, d.Stats.TotalPoints)
		assert.Equal(t, []string{"first_lesson", "century", "legal_expert"}, d.Stats.BadgesEarned)
		assert.Len(t, d.Badges, 3)
		assert.Len(t, d.RecentActivity, 3)
	})

	t.Run("Data File Holds The Ledger", func(t *testing.T) {
		raw, err := os.ReadFile(testDbPath)
		require.NoError(t, err)
		doc := gjson.ParseBytes(raw)

		stats := doc.Get(testKeyPrefix + "UserStats")
		require.True(t, stats.IsArray(), "stats collection missing: %s", string(raw))
		assert.Len(t, stats.Array(), 1, "the stats record is a singleton")
		assert.Equal(t, int64(135), stats.Get("0.total_points").Int())
		assert.Equal(t, int64(2), doc.Get(fmt.Sprintf("%sTrainingProgress.#", testKeyPrefix)).Int())
		assert.Equal(t, int64(3), doc.Get(testKeyPrefix+"ActivityLog.#").Int())
		assert.False(t, doc.Get(testKeyPrefix+"Profile.0.password").Exists())
	})
}
