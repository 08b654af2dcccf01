package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
)

func newTestContext(t *testing.T, method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", "3f9b6a52-0b1e-4c7d-9f44-8a1f2d3c4b5a")
	return c, w
}

func setMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	prev := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = prev
		db.Close()
	})
	return mock
}

// A failed overlap-check query must fail the request, not silently skip the
// overlap guard.
func TestCreateMyScheduleOverlapCheckFailure(t *testing.T) {
	mock := setMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM doctors WHERE user_id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("doc-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, start_time, end_time FROM doctor_schedules")).
		WillReturnError(errors.New("connection reset"))

	c, w := newTestContext(t, http.MethodPost,
		`{"day_of_week":1,"start_time":"09:00","end_time":"12:00"}`)
	CreateMySchedule(c)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(w.Body.String(), "DATABASE_ERROR") {
		t.Errorf("body should carry DATABASE_ERROR, got %s", w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateMyScheduleRejectsOverlap(t *testing.T) {
	mock := setMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM doctors WHERE user_id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("doc-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, start_time, end_time FROM doctor_schedules")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time"}).
			AddRow("sched-1", "09:00:00", "12:00:00"))

	c, w := newTestContext(t, http.MethodPost,
		`{"day_of_week":1,"start_time":"10:00","end_time":"11:00"}`)
	CreateMySchedule(c)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// Sunday is day_of_week 0 and must pass binding validation.
func TestCreateMyScheduleAcceptsSunday(t *testing.T) {
	mock := setMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM doctors WHERE user_id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("doc-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, start_time, end_time FROM doctor_schedules")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time"}))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO doctor_schedules")).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "doctor_id", "day_of_week", "start_time", "end_time", "is_active", "created_at"}).
			AddRow("sched-2", "doc-1", 0, "09:00:00", "12:00:00", true, time.Now()))

	c, w := newTestContext(t, http.MethodPost,
		`{"day_of_week":0,"start_time":"09:00","end_time":"12:00"}`)
	CreateMySchedule(c)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
