// Package upstream implements the HTTP client over the legacy registrar
// services: auth/registration on one base URL, the course catalog on another.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/prereg-portal-api/internal/models"
	"github.com/noah-isme/prereg-portal-api/pkg/config"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

// Observer receives timing for upstream calls. Satisfied by the metrics
// service; nil observers are allowed.
type Observer interface {
	ObserveUpstreamCall(endpoint string, status int, duration time.Duration)
}

// Client talks to the registrar backends with a shared timeout.
type Client struct {
	authBase   string
	courseBase string
	semester   string
	httpClient *http.Client
	logger     *zap.Logger
	observer   Observer
}

// NewClient constructs a registrar client from config.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, observer Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		authBase:   cfg.AuthBaseURL,
		courseBase: cfg.CourseBaseURL,
		semester:   cfg.Semester,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		observer:   observer,
	}
}

// LoginResult is the normalised upstream login payload.
type LoginResult struct {
	Token   string
	Student models.StudentProfile
}

// SubmissionPayload is the per-course registration request body.
type SubmissionPayload struct {
	StudentID  string                `json:"studentId"`
	UID        string                `json:"uid"`
	CourseMode models.EnrollmentMode `json:"course_mode"`
	CourseType models.CourseCategory `json:"course_type"`
}

// rawCourse mirrors the registrar wire format. The status flag is inverted
// there: false or absent means the course is already pre-registered.
type rawCourse struct {
	CourseID  string `json:"course_id"`
	Code      string `json:"course_code"`
	Name      string `json:"course_name"`
	School    string `json:"school"`
	Slot      string `json:"slot"`
	Credits   int    `json:"credits"`
	Lecture   int    `json:"lecture"`
	Tutorial  int    `json:"tutorial"`
	Practical int    `json:"practical"`
	Type      string `json:"type"`
	Status    bool   `json:"status"`
}

func (r rawCourse) toCourse() models.Course {
	category, _ := models.ParseCourseCategory(r.Type)
	return models.Course{
		CourseID:   r.CourseID,
		Code:       r.Code,
		Name:       r.Name,
		School:     r.School,
		Slot:       r.Slot,
		Credits:    r.Credits,
		Lecture:    r.Lecture,
		Tutorial:   r.Tutorial,
		Practical:  r.Practical,
		Category:   category,
		Registered: !r.Status,
	}
}

// Login authenticates against the registrar and returns the bearer token
// plus the merged student profile.
func (c *Client) Login(ctx context.Context, studentID, password string) (*LoginResult, error) {
	body := map[string]string{"student_id": studentID, "password": password}

	var decoded struct {
		Token   string                `json:"token"`
		Student models.StudentProfile `json:"student"`
		User    struct {
			UID string `json:"uid"`
		} `json:"user"`
	}

	status, err := c.do(ctx, http.MethodPost, c.authBase+"/login", "", body, &decoded)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Status == http.StatusUnauthorized {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, appErr.Message)
		}
		return nil, err
	}
	if status < 200 || status >= 300 || decoded.Token == "" {
		return nil, appErrors.Clone(appErrors.ErrBadUpstreamPayload, "login response missing token")
	}

	student := decoded.Student
	if student.UID == "" {
		student.UID = decoded.User.UID
	}
	return &LoginResult{Token: decoded.Token, Student: student}, nil
}

// StudentDetails fetches the student profile for the bearer token.
func (c *Client) StudentDetails(ctx context.Context, token string) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if _, err := c.do(ctx, http.MethodGet, c.authBase+"/details", token, nil, &profile); err != nil {
		return nil, err
	}
	if profile.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrBadUpstreamPayload, "student details missing student_id")
	}
	return &profile, nil
}

// PreRegCourses fetches the eligible course list for the student. A response
// without the final_courses key is a schema violation and fails fast rather
// than defaulting to an empty catalog.
func (c *Client) PreRegCourses(ctx context.Context, token string, student models.StudentProfile) ([]models.Course, error) {
	query := url.Values{}
	query.Set("branch", student.Branch)
	query.Set("year", strconv.Itoa(student.Batch))
	query.Set("program", student.Program)
	query.Set("school", student.School)
	query.Set("semester", c.semester)
	query.Set("student_id", student.StudentID)

	endpoint := c.courseBase + "/courses/get_pre_reg_courses?" + query.Encode()

	var decoded struct {
		FinalCourses *[]rawCourse `json:"final_courses"`
	}
	if _, err := c.do(ctx, http.MethodGet, endpoint, token, nil, &decoded); err != nil {
		return nil, err
	}
	if decoded.FinalCourses == nil {
		return nil, appErrors.Clone(appErrors.ErrBadUpstreamPayload, "catalog response missing final_courses")
	}

	courses := make([]models.Course, 0, len(*decoded.FinalCourses))
	for _, raw := range *decoded.FinalCourses {
		courses = append(courses, raw.toCourse())
	}
	return courses, nil
}

// SubmitPreReg registers a single course. Failures carry the upstream
// message when one is present.
func (c *Client) SubmitPreReg(ctx context.Context, token, courseID string, payload SubmissionPayload) error {
	endpoint := c.authBase + "/prereg/single/" + url.PathEscape(courseID)
	_, err := c.do(ctx, http.MethodPost, endpoint, token, payload, nil)
	return err
}

// Deregister removes a confirmed registration for a single course.
func (c *Client) Deregister(ctx context.Context, token, courseID string) error {
	endpoint := c.authBase + "/deprereg/single/" + url.PathEscape(courseID)
	_, err := c.do(ctx, http.MethodPost, endpoint, token, nil, nil)
	return err
}

// do executes one request, attaching the bearer token when provided and
// decoding a 2xx body into out. Non-2xx responses become typed errors; 401
// maps to ErrSessionExpired so the middleware can tear the session down.
func (c *Client) do(ctx context.Context, method, endpoint, token string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode upstream payload")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upstream request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		c.logger.Warn("upstream request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return 0, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	defer resp.Body.Close() //nolint:errcheck

	c.observe(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		return resp.StatusCode, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, appErrors.Clone(appErrors.ErrUpstreamRejected, errorMessage(resp.Body, resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, appErrors.Wrap(err, appErrors.ErrBadUpstreamPayload.Code, appErrors.ErrBadUpstreamPayload.Status, appErrors.ErrBadUpstreamPayload.Message)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstreamCall(endpoint, status, duration)
	}
}

// errorMessage extracts {message|error} from an upstream error body, falling
// back to a generic status line.
func errorMessage(body io.Reader, status int) string {
	var decoded struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&decoded); err == nil {
		if decoded.Message != "" {
			return decoded.Message
		}
		if decoded.Error != "" {
			return decoded.Error
		}
	}
	return fmt.Sprintf("registration failed (HTTP %d)", status)
}
