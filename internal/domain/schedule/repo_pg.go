package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Weekly Rule Repository ===========

type ruleRepoPG struct{ pool *pgxpool.Pool }

func NewRuleRepoPG(pool *pgxpool.Pool) RuleRepository { return &ruleRepoPG{pool: pool} }

const ruleCols = `id, doctor_id, day_of_week, start_time, end_time,
	slot_duration_minutes, buffer_minutes, break_start, break_end, active,
	created_at, updated_at`

func scanRule(row pgx.Row) (*WeeklyRule, error) {
	var r WeeklyRule
	err := row.Scan(&r.ID, &r.DoctorID, &r.DayOfWeek, &r.StartTime, &r.EndTime,
		&r.SlotDurationMinutes, &r.BufferMinutes, &r.BreakStart, &r.BreakEnd, &r.Active,
		&r.CreatedAt, &r.UpdatedAt)
	return &r, err
}

func (r *ruleRepoPG) ReplaceForDoctor(ctx context.Context, doctorID uuid.UUID, rules []*WeeklyRule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM doctor_schedule WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}

	for _, rule := range rules {
		rule.ID = uuid.New()
		rule.DoctorID = doctorID
		if _, err := tx.Exec(ctx, `
			INSERT INTO doctor_schedule (id, doctor_id, day_of_week, start_time, end_time,
				slot_duration_minutes, buffer_minutes, break_start, break_end, active)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			rule.ID, rule.DoctorID, rule.DayOfWeek, rule.StartTime, rule.EndTime,
			rule.SlotDurationMinutes, rule.BufferMinutes, rule.BreakStart, rule.BreakEnd, rule.Active); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ruleRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*WeeklyRule, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ruleCols+` FROM doctor_schedule WHERE doctor_id = $1 ORDER BY day_of_week`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*WeeklyRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// GetByDoctorAndDay returns nil without error when no rule covers the day.
func (r *ruleRepoPG) GetByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*WeeklyRule, error) {
	rule, err := scanRule(r.pool.QueryRow(ctx,
		`SELECT `+ruleCols+` FROM doctor_schedule WHERE doctor_id = $1 AND day_of_week = $2`,
		doctorID, dayOfWeek))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// =========== Special Date Repository ===========

type specialDateRepoPG struct{ pool *pgxpool.Pool }

func NewSpecialDateRepoPG(pool *pgxpool.Pool) SpecialDateRepository {
	return &specialDateRepoPG{pool: pool}
}

const specialDateCols = `id, doctor_id, date, type, reason, start_time, end_time, created_at`

func scanSpecialDate(row pgx.Row) (*SpecialDate, error) {
	var sd SpecialDate
	err := row.Scan(&sd.ID, &sd.DoctorID, &sd.Date, &sd.Type, &sd.Reason,
		&sd.StartTime, &sd.EndTime, &sd.CreatedAt)
	return &sd, err
}

func (r *specialDateRepoPG) Create(ctx context.Context, sd *SpecialDate) error {
	sd.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO special_date (id, doctor_id, date, type, reason, start_time, end_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		sd.ID, sd.DoctorID, sd.Date, sd.Type, sd.Reason, sd.StartTime, sd.EndTime).
		Scan(&sd.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSpecialDate
	}
	return err
}

func (r *specialDateRepoPG) Delete(ctx context.Context, id uuid.UUID) (*SpecialDate, error) {
	sd, err := scanSpecialDate(r.pool.QueryRow(ctx,
		`DELETE FROM special_date WHERE id = $1 RETURNING `+specialDateCols, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSpecialDateNotFound
	}
	if err != nil {
		return nil, err
	}
	return sd, nil
}

// GetByDoctorAndDate returns nil without error when the date has no entry.
func (r *specialDateRepoPG) GetByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date string) (*SpecialDate, error) {
	sd, err := scanSpecialDate(r.pool.QueryRow(ctx,
		`SELECT `+specialDateCols+` FROM special_date WHERE doctor_id = $1 AND date = $2`,
		doctorID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sd, nil
}

func (r *specialDateRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, from, to string) ([]*SpecialDate, error) {
	query := `SELECT ` + specialDateCols + ` FROM special_date WHERE doctor_id = $1`
	args := []interface{}{doctorID}
	idx := 2

	if from != "" {
		query += fmt.Sprintf(` AND date >= $%d`, idx)
		args = append(args, from)
		idx++
	}
	if to != "" {
		query += fmt.Sprintf(` AND date <= $%d`, idx)
		args = append(args, to)
	}
	query += ` ORDER BY date`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []*SpecialDate
	for rows.Next() {
		sd, err := scanSpecialDate(rows)
		if err != nil {
			return nil, err
		}
		dates = append(dates, sd)
	}
	return dates, rows.Err()
}
