package controllers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/ghazyAlghifari508/genting-apps-sub000/services"
	"github.com/ghazyAlghifari508/genting-apps-sub000/ws"
)

// Booking runs inside a transaction that locks the doctor row, so two
// concurrent requests for the same window serialize and the second one sees
// the first one's insert. This exercises the overlap rejection on that path.
func TestCreateConsultationRejectsOverlapWithinTransaction(t *testing.T) {
	mock := setMockDB(t)
	h := NewConsultationHandler(services.NewSimulatedGateway(), ws.NewHub(), time.UTC)

	future := time.Now().UTC().AddDate(0, 0, 7)
	slot := time.Date(future.Year(), future.Month(), future.Day(), 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM consultations WHERE user_id")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT d.hourly_rate")).
		WillReturnRows(sqlmock.NewRows([]string{"hourly_rate"}).AddRow(120000.0))
	mock.ExpectQuery("FROM doctor_schedules").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT scheduled_at, duration_minutes FROM consultations")).
		WillReturnRows(sqlmock.NewRows([]string{"scheduled_at", "duration_minutes"}).
			AddRow(slot.Add(30*time.Minute), 60))
	mock.ExpectRollback()

	body := fmt.Sprintf(
		`{"doctor_id":%q,"date":%q,"time":%q,"duration_minutes":60,"idempotency_key":%q}`,
		"8c9d0a1b-2e3f-4a5b-8c9d-0a1b2c3d4e5f",
		slot.Format("2006-01-02"), slot.Format("15:04"),
		"0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0")

	c, w := newTestContext(t, http.MethodPost, body)
	h.CreateConsultation(c)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusConflict, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateConsultationAcceptsAdjacentSlot(t *testing.T) {
	mock := setMockDB(t)
	h := NewConsultationHandler(services.NewSimulatedGateway(), ws.NewHub(), time.UTC)

	future := time.Now().UTC().AddDate(0, 0, 7)
	slot := time.Date(future.Year(), future.Month(), future.Day(), 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM consultations WHERE user_id")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT d.hourly_rate")).
		WillReturnRows(sqlmock.NewRows([]string{"hourly_rate"}).AddRow(120000.0))
	mock.ExpectQuery("FROM doctor_schedules").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	// The previous booking ends exactly where this one starts
	mock.ExpectQuery(regexp.QuoteMeta("SELECT scheduled_at, duration_minutes FROM consultations")).
		WillReturnRows(sqlmock.NewRows([]string{"scheduled_at", "duration_minutes"}).
			AddRow(slot.Add(-60*time.Minute), 60))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO consultations")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "doctor_id", "scheduled_at", "duration_minutes", "hourly_rate",
			"total_cost", "description", "status", "payment_status", "idempotency_key", "created_at",
		}).AddRow(
			"consultation-1", "3f9b6a52-0b1e-4c7d-9f44-8a1f2d3c4b5a",
			"8c9d0a1b-2e3f-4a5b-8c9d-0a1b2c3d4e5f", slot, 60, 120000.0,
			120000.0, nil, "scheduled", "pending",
			"0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0", time.Now()))
	mock.ExpectCommit()

	body := fmt.Sprintf(
		`{"doctor_id":%q,"date":%q,"time":%q,"duration_minutes":60,"idempotency_key":%q}`,
		"8c9d0a1b-2e3f-4a5b-8c9d-0a1b2c3d4e5f",
		slot.Format("2006-01-02"), slot.Format("15:04"),
		"0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0")

	c, w := newTestContext(t, http.MethodPost, body)
	h.CreateConsultation(c)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

type pendingGateway struct{}

func (pendingGateway) Charge(ctx context.Context, req services.ChargeRequest) (*services.ChargeResult, error) {
	return nil, services.ErrPaymentPending
}

// A pending gateway charge must not flip payment_status to confirmed.
func TestPayConsultationPendingChargeIsNotConfirmed(t *testing.T) {
	mock := setMockDB(t)
	h := NewConsultationHandler(pendingGateway{}, ws.NewHub(), time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payment_status, total_cost FROM consultations")).
		WillReturnRows(sqlmock.NewRows([]string{"payment_status", "total_cost"}).
			AddRow("pending", 150000.0))

	c, w := newTestContext(t, http.MethodPost, `{"payment_method":"bank_transfer"}`)
	c.Params = gin.Params{{Key: "id", Value: "consultation-1"}}
	h.PayConsultation(c)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusConflict, w.Body.String())
	}
	// No UPDATE was expected; the mock fails above if one ran
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
