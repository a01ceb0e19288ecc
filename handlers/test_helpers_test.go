package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
)

const testJWTSecret = "test-jwt-secret-for-testing-only-32chars"

var testUploadTime = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// TestContext holds common test dependencies
type TestContext struct {
	DB       *sql.DB
	Mock     sqlmock.Sqlmock
	Echo     *echo.Echo
	Recorder *httptest.ResponseRecorder
}

// SetupTest creates a new test context with mocked database
func SetupTest(t *testing.T) *TestContext {
	t.Helper()

	os.Setenv("JWT_SECRET", testJWTSecret)
	InitLogger(true)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	e := echo.New()
	rec := httptest.NewRecorder()

	return &TestContext{
		DB:       db,
		Mock:     mock,
		Echo:     e,
		Recorder: rec,
	}
}

// Cleanup closes the database connection
func (tc *TestContext) Cleanup() {
	tc.DB.Close()
}

// NewJSONRequest creates a new HTTP request with JSON body
func NewJSONRequest(method, path string, body interface{}) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, nil
}

// ParseJSONResponse parses the response body as JSON
func ParseJSONResponse(rec *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}

// AssertStatus checks if the response status code matches expected
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rec.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, rec.Code, rec.Body.String())
	}
}

// AssertJSONError checks if the response contains an error field with expected message
func AssertJSONError(t *testing.T, rec *httptest.ResponseRecorder, expectedError string) {
	t.Helper()
	var resp map[string]interface{}
	if err := ParseJSONResponse(rec, &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	errMsg, ok := resp["error"].(string)
	if !ok {
		t.Errorf("Response does not contain 'error' field. Response: %v", resp)
		return
	}

	if errMsg != expectedError {
		t.Errorf("Expected error '%s', got '%s'", expectedError, errMsg)
	}
}

// CreateTestAuthHandler creates an AuthHandler with mocked database
func CreateTestAuthHandler(db *sql.DB) *AuthHandler {
	sharedJWTSecret = []byte(testJWTSecret)

	return &AuthHandler{
		db:        db,
		jwtSecret: []byte(testJWTSecret),
	}
}

// CreateAuthenticatedContext creates an echo.Context with a principal set,
// as the auth filter would have left it
func CreateAuthenticatedContext(e *echo.Echo, rec *httptest.ResponseRecorder, req *http.Request, id int64, username, email string) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(principalKey, &Principal{
		ID:       id,
		Username: username,
		Email:    email,
	})
	return c
}

// expectUserLookup registers the principal lookup the auth filter performs
func expectUserLookup(mock sqlmock.Sqlmock, id int64, username, email string) {
	rows := sqlmock.NewRows([]string{"id", "username", "email"}).
		AddRow(id, username, email)
	mock.ExpectQuery("SELECT id, username, email FROM users WHERE email").
		WithArgs(email).
		WillReturnRows(rows)
}

// pdfRow builds the standard pdf_files row set
func pdfRow(id int64, filename, filepath, uploadedBy string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "filename", "filepath", "uploaded_by", "upload_time"}).
		AddRow(id, filename, filepath, uploadedBy, testUploadTime)
}
