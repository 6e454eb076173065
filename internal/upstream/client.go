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

	"github.com/rs/zerolog"

	"github.com/noah-isme/sma-admin-gateway/internal/observability"
)

// ErrMissingToken is raised before any request is attempted when no bearer
// token is configured. No network call is made in that case.
var ErrMissingToken = errors.New("upstream auth token missing")

// ErrNotFound marks a 404 from the backend. Most callers treat it as fatal;
// the fee lookup treats it as an empty result.
var ErrNotFound = errors.New("upstream resource not found")

// Error is the uniform failure raised for transport errors, non-2xx
// statuses, and well-formed bodies whose success flag is not true.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream request failed with status %d", e.StatusCode)
}

// Client is the school backend consumed by every screen workflow.
type Client interface {
	ListTimetable(ctx context.Context) ([]TimetableEntry, error)
	ListClasses(ctx context.Context) ([]ClassRow, error)
	ListSections(ctx context.Context, classID int) ([]SectionRow, error)
	ListSubjects(ctx context.Context) ([]SubjectRow, error)
	ListStudents(ctx context.Context, classID, sectionID int) ([]StudentRow, error)
	CreateMark(ctx context.Context, payload CreateMarkRequest) (CreateMarkResult, error)
	ListMarks(ctx context.Context, filter MarkFilter) ([]MarkRow, error)
	ListAllStudents(ctx context.Context) ([]FeeStudentRow, error)
	GetStudentFees(ctx context.Context, studentID int, academicYear string) (StudentFeesData, error)
	CollectPayment(ctx context.Context, payload CollectPaymentRequest) (PaymentReceipt, error)
	CreateSubject(ctx context.Context, payload SubjectRequest) error
	UpdateSubject(ctx context.Context, payload SubjectRequest) error
	DeleteSubject(ctx context.Context, subjectID int) error
}

// Config holds the connection settings for the backend.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New builds a backend client. The token is validated per request so a
// gateway started without one still serves its health endpoint.
func New(cfg Config, logger zerolog.Logger) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("upstream base url must not be empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "upstream_client").Logger(),
	}, nil
}

func (c *client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) (err error) {
	if c.token == "" {
		return ErrMissingToken
	}

	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		observability.UpstreamRequests().WithLabelValues(method, path, outcome).Inc()
		observability.UpstreamLatency().WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("HTTP error %d", resp.StatusCode)
		if decodeErr == nil && env.Message != "" {
			message = env.Message
		}
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("upstream request failed")
		return &Error{StatusCode: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "invalid response from server"}
	}

	// A 2xx with success != true is still a failure.
	if !env.Success {
		message := env.Message
		if message == "" {
			message = "request was not successful"
		}
		return &Error{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{StatusCode: resp.StatusCode, Message: "unexpected response payload"}
		}
	}

	return nil
}

// list decodes the data block into rows, treating a payload that is not an
// array as an empty result rather than an error.
func (c *client) list(ctx context.Context, path string, query url.Values, out interface{}) error {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn().Str("path", path).Msg("upstream returned a non-array payload, treating as empty")
		return nil
	}
	return nil
}

func (c *client) ListTimetable(ctx context.Context) ([]TimetableEntry, error) {
	entries := make([]TimetableEntry, 0)
	if err := c.list(ctx, "/api/exams/timetable", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *client) ListClasses(ctx context.Context) ([]ClassRow, error) {
	rows := make([]ClassRow, 0)
	if err := c.list(ctx, "/api/classes", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *client) ListSections(ctx context.Context, classID int) ([]SectionRow, error) {
	query := url.Values{}
	query.Set("class_id", strconv.Itoa(classID))
	rows := make([]SectionRow, 0)
	if err := c.list(ctx, "/api/sections", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *client) ListSubjects(ctx context.Context) ([]SubjectRow, error) {
	rows := make([]SubjectRow, 0)
	if err := c.list(ctx, "/api/subjects", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *client) ListStudents(ctx context.Context, classID, sectionID int) ([]StudentRow, error) {
	query := url.Values{}
	query.Set("class_id", strconv.Itoa(classID))
	if sectionID > 0 {
		query.Set("section_id", strconv.Itoa(sectionID))
	}
	rows := make([]StudentRow, 0)
	if err := c.list(ctx, "/api/students", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *client) CreateMark(ctx context.Context, payload CreateMarkRequest) (CreateMarkResult, error) {
	var result CreateMarkResult
	if err := c.do(ctx, http.MethodPost, "/api/exams/marks", nil, payload, &result); err != nil {
		return CreateMarkResult{}, err
	}
	return result, nil
}

func (c *client) ListMarks(ctx context.Context, filter MarkFilter) ([]MarkRow, error) {
	query := url.Values{}
	if filter.ClassID > 0 {
		query.Set("class_id", strconv.Itoa(filter.ClassID))
	}
	if filter.SectionID > 0 {
		query.Set("section_id", strconv.Itoa(filter.SectionID))
	}
	if filter.SubjectID > 0 {
		query.Set("subject_id", strconv.Itoa(filter.SubjectID))
	}
	if filter.ExamType != "" {
		query.Set("exam_type", filter.ExamType)
	}
	rows := make([]MarkRow, 0)
	if err := c.list(ctx, "/api/exams/marks", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *client) ListAllStudents(ctx context.Context) ([]FeeStudentRow, error) {
	rows := make([]FeeStudentRow, 0)
	if err := c.list(ctx, "/api/fees/students", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *client) GetStudentFees(ctx context.Context, studentID int, academicYear string) (StudentFeesData, error) {
	query := url.Values{}
	query.Set("student_id", strconv.Itoa(studentID))
	query.Set("academic_year", academicYear)

	var data StudentFeesData
	err := c.do(ctx, http.MethodGet, "/api/fees/student", query, nil, &data)
	if err != nil {
		// A student without fee records is an empty result, not a failure.
		if errors.Is(err, ErrNotFound) {
			return StudentFeesData{}, nil
		}
		return StudentFeesData{}, err
	}
	return data, nil
}

func (c *client) CollectPayment(ctx context.Context, payload CollectPaymentRequest) (PaymentReceipt, error) {
	var receipt PaymentReceipt
	if err := c.do(ctx, http.MethodPost, "/api/fees/collect", nil, payload, &receipt); err != nil {
		return PaymentReceipt{}, err
	}
	return receipt, nil
}

func (c *client) CreateSubject(ctx context.Context, payload SubjectRequest) error {
	return c.do(ctx, http.MethodPost, "/api/subjects", nil, payload, nil)
}

func (c *client) UpdateSubject(ctx context.Context, payload SubjectRequest) error {
	return c.do(ctx, http.MethodPut, "/api/subjects/"+strconv.Itoa(payload.SubjectID), nil, payload, nil)
}

func (c *client) DeleteSubject(ctx context.Context, subjectID int) error {
	return c.do(ctx, http.MethodDelete, "/api/subjects/"+strconv.Itoa(subjectID), nil, nil, nil)
}
