package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hailamdev/qa-board/backend/internal/database"
	"github.com/hailamdev/qa-board/backend/internal/models"
)

var testDB database.Service

func mustStartPostgresContainer() (func(context.Context) error, error) {
	var (
		dbName = "qaboard"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return nil, err
	}

	testDB, err = database.New(database.Config{
		Host:     dbHost,
		Port:     dbPort.Port(),
		User:     dbUser,
		Password: dbPwd,
		Name:     dbName,
		SSLMode:  "disable",
	})
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		return dbContainer.Terminate(ctx)
	}, nil
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	teardown, err := mustStartPostgresContainer()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	code := m.Run()

	if err := teardown(context.Background()); err != nil {
		log.Fatalf("could not teardown postgres container: %v", err)
	}
	os.Exit(code)
}

// newTestRouter wires the public routes plus the answer-create route with
// a stubbed authenticated user (the JWT middleware has its own tests).
func newTestRouter(userID int) *gin.Engine {
	h := NewHandler(testDB)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/questions", h.Question.GetQuestions)
	api.GET("/questions/:id", h.Question.GetQuestion)
	api.GET("/questions/:id/answers", h.Answer.GetAnswers)
	api.POST("/questions/:id/upvote", h.Vote.UpvoteQuestion)
	api.POST("/questions/:id/downvote", h.Vote.DownvoteQuestion)
	api.POST("/answers/:id/upvote", h.Vote.UpvoteAnswer)
	api.POST("/answers/:id/downvote", h.Vote.DownvoteAnswer)

	authed := func(c *gin.Context) { c.Set("user_id", userID) }
	api.POST("/questions/:id/answers", authed, h.Answer.CreateAnswer)

	return r
}

func createTestUser(t *testing.T) models.User {
	t.Helper()
	user := models.User{
		Username: fmt.Sprintf("asker-%d", time.Now().UnixNano()),
		Email:    fmt.Sprintf("asker-%d@example.com", time.Now().UnixNano()),
		Password: "hash",
	}
	if err := testDB.GetDB().Create(&user).Error; err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func createTestQuestion(t *testing.T) models.Question {
	t.Helper()
	user := createTestUser(t)
	question := models.Question{
		Title:       "Why is my channel deadlocking?",
		Description: "Two goroutines, one unbuffered channel.",
		Category:    "golang",
		AuthorID:    user.ID,
	}
	if err := testDB.GetDB().Create(&question).Error; err != nil {
		t.Fatalf("creating test question: %v", err)
	}
	return question
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("%s %s: unparseable body %q", method, path, w.Body.String())
		}
	}
	obj, _ := parsed.(map[string]any)
	return w, obj
}

func questionVoteCount(t *testing.T, questionID int) int64 {
	t.Helper()
	var n int64
	testDB.GetDB().Table("question_votes").Where("question_id = ?", questionID).Count(&n)
	return n
}

func TestVoteEndpointsScenario(t *testing.T) {
	question := createTestQuestion(t)
	r := newTestRouter(0)
	path := fmt.Sprintf("/api/questions/%d", question.ID)

	w, body := doJSON(t, r, http.MethodPost, path+"/upvote", `{"direction":"1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("upvote status = %d, body %v", w.Code, body)
	}
	vote, ok := body["questionVote"].(map[string]any)
	if !ok {
		t.Fatalf("missing questionVote in %v", body)
	}
	if vote["upvote"] != float64(1) || vote["downvote"] != float64(0) {
		t.Fatalf("after upvote: got {%v, %v}, want {1, 0}", vote["upvote"], vote["downvote"])
	}
	if vote["title"] != question.Title {
		t.Fatalf("questionVote does not embed the question fields: %v", vote)
	}

	w, body = doJSON(t, r, http.MethodPost, path+"/downvote", `{"direction":"-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("downvote status = %d, body %v", w.Code, body)
	}
	vote = body["questionVote"].(map[string]any)
	if vote["upvote"] != float64(1) || vote["downvote"] != float64(1) {
		t.Fatalf("after downvote: got {%v, %v}, want {1, 1}", vote["upvote"], vote["downvote"])
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/questions/999999/upvote", `{"direction":"1"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("vote on missing question: status = %d, want 404", w.Code)
	}
}

func TestVoteDirectionRejected(t *testing.T) {
	question := createTestQuestion(t)
	r := newTestRouter(0)
	path := fmt.Sprintf("/api/questions/%d/upvote", question.ID)

	tests := []struct {
		name string
		body string
	}{
		{"missing direction", `{}`},
		{"wrong sign", `{"direction":"-1"}`},
		{"wrong magnitude", `{"direction":"2"}`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doJSON(t, r, http.MethodPost, path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %v)", w.Code, body)
			}
			if _, ok := body["message"].(string); !ok {
				t.Fatalf("error body missing message: %v", body)
			}
		})
	}

	// rejected casts must leave no ledger entry behind
	if n := questionVoteCount(t, question.ID); n != 0 {
		t.Fatalf("ledger entries after rejected casts = %d, want 0", n)
	}
}

func TestAnswerVoteEndpoints(t *testing.T) {
	question := createTestQuestion(t)
	user := createTestUser(t)
	answer := models.Answer{
		Content:    "Buffer the channel or add a receiver.",
		QuestionID: question.ID,
		AuthorID:   user.ID,
	}
	if err := testDB.GetDB().Create(&answer).Error; err != nil {
		t.Fatalf("creating answer: %v", err)
	}

	r := newTestRouter(0)
	path := fmt.Sprintf("/api/answers/%d/upvote", answer.ID)

	w, body := doJSON(t, r, http.MethodPost, path, `{"direction":"1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("upvote status = %d, body %v", w.Code, body)
	}
	vote, ok := body["answerVote"].(map[string]any)
	if !ok {
		t.Fatalf("missing answerVote in %v", body)
	}
	if vote["upvote"] != float64(1) || vote["downvote"] != float64(0) {
		t.Fatalf("after upvote: got {%v, %v}, want {1, 0}", vote["upvote"], vote["downvote"])
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/answers/999999/downvote", `{"direction":"-1"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("vote on missing answer: status = %d, want 404", w.Code)
	}
}

func TestQuestionListFilterAllowList(t *testing.T) {
	r := newTestRouter(0)

	w, _ := doJSON(t, r, http.MethodGet, "/api/questions?title=chan&category=golang", "")
	if w.Code != http.StatusOK {
		t.Fatalf("allowed filter: status = %d, want 200", w.Code)
	}

	w, body := doJSON(t, r, http.MethodGet, "/api/questions?bogus=x", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown filter: status = %d, want 400", w.Code)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "bogus") {
		t.Fatalf("rejection should name the parameter, got %v", body)
	}

	// valid parameters do not rescue an unknown one
	w, _ = doJSON(t, r, http.MethodGet, "/api/questions?title=chan&bogus=x", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mixed filter: status = %d, want 400", w.Code)
	}
}

func TestCreateAnswerContentBoundary(t *testing.T) {
	question := createTestQuestion(t)
	user := createTestUser(t)
	r := newTestRouter(user.ID)
	path := fmt.Sprintf("/api/questions/%d/answers", question.ID)

	ok300 := fmt.Sprintf(`{"content":%q}`, strings.Repeat("a", 300))
	w, body := doJSON(t, r, http.MethodPost, path, ok300)
	if w.Code != http.StatusCreated {
		t.Fatalf("300-character answer: status = %d, body %v", w.Code, body)
	}

	long301 := fmt.Sprintf(`{"content":%q}`, strings.Repeat("a", 301))
	w, body = doJSON(t, r, http.MethodPost, path, long301)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("301-character answer: status = %d, body %v", w.Code, body)
	}
	if _, ok := body["message"].(string); !ok {
		t.Fatalf("error body missing message: %v", body)
	}
}
