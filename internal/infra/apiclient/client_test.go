package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"quizmaster/internal/domain"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler, creds *Credentials) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api/", server.Client(), creds, quietLogger())
}

func signedToken(t *testing.T, expires time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestLoadQuizMapsMetadataAndQuestions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/quizzes/5/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":5,"title":"Capitals","description":"Europe","author":"ana","category":"geo",
			"difficulty":"easy","is_public":true,"time_limit":2,"created_at":"2025-06-01T10:20:30.123456Z",
			"plays":42,"questions_count":2,"rating":4.5}`))
	})
	mux.HandleFunc("/api/quizzes/5/questions/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"quiz":5,"question_text":"Capital of France?","question_type":"multiple-choice","options":["Paris","Lyon"],"correct_answer":0,"points":1},
			{"id":2,"quiz":5,"question_text":"Rome is in Italy","question_type":"true-false","options":null,"correct_answer":"true","points":2,"explanation":"It is."}
		]`))
	})
	client := newTestClient(t, mux, nil)

	quiz, err := client.LoadQuiz(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(5), quiz.ID)
	require.Equal(t, "Capitals", quiz.Title)
	require.Equal(t, "ana", quiz.Author)
	require.Equal(t, 2, quiz.TimeLimitMinutes)
	require.Equal(t, 42, quiz.Plays)
	require.InDelta(t, 4.5, quiz.Rating, 0.001)
	require.Equal(t, 2025, quiz.CreatedAt.Year())
	require.Len(t, quiz.Questions, 2)

	mc := quiz.Questions[0]
	require.Equal(t, domain.KindMultipleChoice, mc.Kind)
	require.Equal(t, "0", mc.CorrectAnswer)
	require.Equal(t, []string{"Paris", "Lyon"}, mc.Options)
	require.NoError(t, mc.Validate())

	tf := quiz.Questions[1]
	require.Equal(t, domain.KindTrueFalse, tf.Kind)
	require.Nil(t, tf.Options)
	require.Equal(t, "It is.", tf.Explanation)
}

func TestLoadQuizNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"No Quiz matches the given query."}`))
	}), nil)

	_, err := client.LoadQuiz(context.Background(), 99)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrQuizNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "No Quiz matches the given query.", apiErr.Message)
}

func TestTransportFailureIsServiceUnavailable(t *testing.T) {
	client := NewClient("http://example.test/api", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	}, nil, quietLogger())

	_, err := client.FetchQuizMetadata(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestRefreshOnUnauthorizedAndRetry(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body refreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "refresh-1", body.Refresh)
		_ = json.NewEncoder(w).Encode(tokenResponse{Access: "access-2"})
	})
	mux.HandleFunc("/api/quizzes/popular/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":3,"title":"Popular","plays":900,"questions_count":4}]`))
	})
	creds := NewCredentials("access-1", "refresh-1")
	client := newTestClient(t, mux, creds)

	quizzes, err := client.ListPopular(context.Background())
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	require.Equal(t, 900, quizzes[0].Plays)
	require.Equal(t, int32(1), refreshCalls.Load())
	require.Equal(t, "access-2", creds.Access())
	require.Equal(t, "refresh-1", creds.RefreshToken())
}

func TestRefreshFailureClearsCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token is blacklisted"}`))
	})
	mux.HandleFunc("/api/quizzes/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	creds := NewCredentials("stale", "refresh-1")
	client := newTestClient(t, mux, creds)

	_, err := client.CreateQuiz(context.Background(), domain.QuizDraft{Title: "x"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Empty(t, creds.Access())
	require.Empty(t, creds.RefreshToken())
}

func TestUnauthorizedWithoutRefreshToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Authentication credentials were not provided."}`))
	}), nil)

	_, err := client.CreateQuiz(context.Background(), domain.QuizDraft{Title: "x"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestExpiredAccessTokenRefreshesBeforeRequest(t *testing.T) {
	fresh := signedToken(t, time.Now().Add(time.Hour))
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(tokenResponse{Access: fresh, Refresh: "refresh-2"})
	})
	mux.HandleFunc("/api/quizzes/8/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer "+fresh, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":8,"title":"Fresh"}`))
	})
	creds := NewCredentials(signedToken(t, time.Now().Add(-time.Minute)), "refresh-1")
	require.True(t, creds.AccessExpired())

	client := newTestClient(t, mux, creds)
	quiz, err := client.FetchQuizMetadata(context.Background(), 8)
	require.NoError(t, err)
	require.Equal(t, "Fresh", quiz.Title)
	require.Equal(t, int32(1), refreshCalls.Load())
	require.Equal(t, "refresh-2", creds.RefreshToken())
	require.False(t, creds.AccessExpired())
}

func TestAccessExpiredIgnoresOpaqueTokens(t *testing.T) {
	require.False(t, NewCredentials("", "").AccessExpired())
	require.False(t, NewCredentials("not-a-jwt", "").AccessExpired())
	require.False(t, NewCredentials(signedToken(t, time.Now().Add(time.Minute)), "").AccessExpired())
}

func TestObtainTokenStoresPair(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token/", r.URL.Path)
		var body tokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ana", body.Username)
		_ = json.NewEncoder(w).Encode(tokenResponse{Access: "a", Refresh: "r"})
	}), nil)

	require.NoError(t, client.ObtainToken(context.Background(), "ana", "secret"))
	require.Equal(t, "a", client.Credentials().Access())
	require.Equal(t, "r", client.Credentials().RefreshToken())
}

func TestCreateQuizSendsPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/quizzes/", r.URL.Path)
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Capitals", body["title"])
		require.Equal(t, float64(5), body["time_limit"])
		questions := body["questions"].([]any)
		require.Len(t, questions, 2)
		mc := questions[0].(map[string]any)
		require.Equal(t, float64(1), mc["correct_answer"])
		require.Len(t, mc["options"], 2)
		tf := questions[1].(map[string]any)
		require.Nil(t, tf["options"])
		require.Equal(t, "false", tf["correct_answer"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":12,"title":"Capitals","author":"ana","questions_count":0}`))
	}), NewCredentials("token-1", ""))

	created, err := client.CreateQuiz(context.Background(), domain.QuizDraft{
		Title:            "Capitals",
		TimeLimitMinutes: 5,
		Questions: []domain.QuestionDraft{
			{Text: "Capital of Spain?", Kind: domain.KindMultipleChoice, Options: []string{"Sevilla", "Madrid"}, CorrectAnswer: "1", Points: 1},
			{Text: "Lisbon is in Spain", Kind: domain.KindTrueFalse, CorrectAnswer: "false", Points: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), created.ID)
	require.Equal(t, 2, created.QuestionsCount)
}

func TestFlexStringDecoding(t *testing.T) {
	var payload struct {
		A flexString `json:"a"`
		B flexString `json:"b"`
		C flexString `json:"c"`
		D flexString `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"Paris","b":2,"c":true,"d":null}`), &payload))
	require.Equal(t, flexString("Paris"), payload.A)
	require.Equal(t, flexString("2"), payload.B)
	require.Equal(t, flexString("true"), payload.C)
	require.Equal(t, flexString(""), payload.D)
}

func TestReadFallsBackToAnonymousWhenRefreshRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
	})
	mux.HandleFunc("/api/quizzes/8/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":8,"title":"Public"}`))
	})
	creds := NewCredentials(signedToken(t, time.Now().Add(-time.Minute)), "stale-refresh")
	client := newTestClient(t, mux, creds)

	quiz, err := client.FetchQuizMetadata(context.Background(), 8)
	require.NoError(t, err)
	require.Equal(t, "Public", quiz.Title)
	require.Empty(t, creds.Access())
	require.Empty(t, creds.RefreshToken())
}

func TestReadRetriesAnonymouslyAfterRejectedToken(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}), NewCredentials("revoked", ""))

	quizzes, err := client.ListPopular(context.Background())
	require.NoError(t, err)
	require.Empty(t, quizzes)
	require.Equal(t, int32(2), calls.Load())
}

func TestRefreshWithoutAccessTokenFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/quizzes/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	creds := NewCredentials("stale", "refresh-1")
	client := newTestClient(t, mux, creds)

	_, err := client.CreateQuiz(context.Background(), domain.QuizDraft{Title: "x"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Empty(t, creds.Access())
	require.Empty(t, creds.RefreshToken())
}
