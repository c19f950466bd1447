package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"github.com/graziabaiamonte/Appointments-App-zm/internal/domain"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/store"
)

// pgUniqueViolation is the Postgres error code raised when an insert hits
// the unique index on (appointment_date, appointment_time).
const pgUniqueViolation = "23505"

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	_, err := r.db.NewInsert().Model(&m).Returning("id, created_at").Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, err
	}
	return m, nil
}

func (r *AppointmentRepo) List(ctx context.Context) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("appointment_date DESC, appointment_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListForDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("appointment_date = ?", date).
		OrderExpr("appointment_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (domain.Appointment, error) {
	var m domain.Appointment
	err := r.db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return m, nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepo) ExistsAt(ctx context.Context, date, clock string) (bool, error) {
	return r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("appointment_date = ?", date).
		Where("appointment_time = ?", clock).
		Exists(ctx)
}

func (r *AppointmentRepo) TimesForDate(ctx context.Context, date string) ([]string, error) {
	var times []string
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Column("appointment_time").
		Where("appointment_date = ?", date).
		Scan(ctx, &times)
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *AppointmentRepo) CountDistinctEmails(ctx context.Context) (int, error) {
	var count int
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		ColumnExpr("COUNT(DISTINCT email)").
		Scan(ctx, &count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
