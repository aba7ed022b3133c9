package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/prereg-portal-api/internal/models"
	"github.com/noah-isme/prereg-portal-api/pkg/config"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

func newTestClient(authURL, courseURL string) *Client {
	return NewClient(config.UpstreamConfig{
		AuthBaseURL:   authURL,
		CourseBaseURL: courseURL,
		Timeout:       2 * time.Second,
		Semester:      "even",
	}, zap.NewNop(), nil)
}

func studentFixture() models.StudentProfile {
	return models.StudentProfile{StudentID: "S123", UID: "U123", Branch: "CSE", Batch: 2023, Program: "BTech", School: "SOE"}
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "S123", body["student_id"])
		assert.Equal(t, "secret", body["password"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":   "upstream-token",
			"student": map[string]interface{}{"student_id": "S123", "name": "Test Student"},
			"user":    map[string]interface{}{"uid": "U123"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	result, err := client.Login(context.Background(), "S123", "secret")
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", result.Token)
	assert.Equal(t, "S123", result.Student.StudentID)
	assert.Equal(t, "U123", result.Student.UID, "uid merged from the user object")
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.Login(context.Background(), "S123", "wrong")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"student": map[string]string{"student_id": "S123"}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.Login(context.Background(), "S123", "secret")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadUpstreamPayload.Code, appErrors.FromError(err).Code)
}

func TestPreRegCourses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses/get_pre_reg_courses", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		query := r.URL.Query()
		assert.Equal(t, "CSE", query.Get("branch"))
		assert.Equal(t, "2023", query.Get("year"))
		assert.Equal(t, "even", query.Get("semester"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"final_courses": []map[string]interface{}{
				{"course_id": "c1", "course_code": "CS101", "course_name": "Programming", "slot": "A", "credits": 4, "type": "IC", "status": true},
				{"course_id": "c2", "course_code": "CS201", "course_name": "Algorithms", "slot": "A", "credits": 3, "type": "DC", "status": false},
				{"course_id": "c3", "course_code": "XX999", "course_name": "Mystery", "slot": "B", "credits": 2, "type": "ZZ"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	courses, err := client.PreRegCourses(context.Background(), "tok", studentFixture())
	require.NoError(t, err)
	require.Len(t, courses, 3)

	// status carries inverted polarity: false or absent means registered.
	assert.False(t, courses[0].Registered)
	assert.True(t, courses[1].Registered)
	assert.True(t, courses[2].Registered)

	assert.Equal(t, models.CategoryInstituteCore, courses[0].Category)
	assert.Equal(t, models.CourseCategory("ZZ"), courses[2].Category, "unknown tags pass through")
}

func TestPreRegCoursesMissingFinalCourses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"courses": []string{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.PreRegCourses(context.Background(), "tok", studentFixture())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBadUpstreamPayload.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "final_courses")
}

func TestPreRegCoursesEmptyFinalCourses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"final_courses": []interface{}{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	courses, err := client.PreRegCourses(context.Background(), "tok", studentFixture())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestSubmitPreReg(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/prereg/single/c1", r.URL.Path)

		var payload SubmissionPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "S123", payload.StudentID)
		assert.Equal(t, models.ModeAudit, payload.CourseMode)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	err := client.SubmitPreReg(context.Background(), "tok", "c1", SubmissionPayload{
		StudentID:  "S123",
		UID:        "U123",
		CourseMode: models.ModeAudit,
		CourseType: models.CategoryInstituteCore,
	})
	require.NoError(t, err)
}

func TestSubmitPreRegRejectedCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Seat limit reached"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	err := client.SubmitPreReg(context.Background(), "tok", "c1", SubmissionPayload{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstreamRejected.Code, appErr.Code)
	assert.Equal(t, "Seat limit reached", appErr.Message)
}

func TestErrorMessageFallsBackToErrorKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "already registered"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	err := client.SubmitPreReg(context.Background(), "tok", "c1", SubmissionPayload{})
	require.Error(t, err)
	assert.Equal(t, "already registered", appErrors.FromError(err).Message)
}

func TestErrorMessageGenericFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	err := client.SubmitPreReg(context.Background(), "tok", "c1", SubmissionPayload{})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "HTTP 500")
}

func TestUnauthorizedMapsToSessionExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.PreRegCourses(context.Background(), "expired", studentFixture())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}

func TestUnreachableUpstream(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1", "http://127.0.0.1:1")

	_, err := client.Login(context.Background(), "S123", "secret")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErrors.FromError(err).Code)
}

func TestDeregister(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/deprereg/single/c1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	require.NoError(t, client.Deregister(context.Background(), "tok", "c1"))
}

func TestStudentDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"student_id": "S123", "name": "Test Student"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	profile, err := client.StudentDetails(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Test Student", profile.Name)
}

func TestStudentDetailsMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"name": "No ID"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.StudentDetails(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadUpstreamPayload.Code, appErrors.FromError(err).Code)
}
