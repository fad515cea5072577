package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/foxseedlab/tomodachin/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) repository.Store {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) InsertMatch(ctx context.Context, m repository.Match) error {
	activities, err := json.Marshal(m.Activities)
	if err != nil {
		return fmt.Errorf("failed to encode activities: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO matches (id, host_id, start_at, activities, description, channel_id, message_id, recruitment_end_at, is_recruiting)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.HostID, m.StartAt, activities, m.Description, m.ChannelID, m.MessageID, m.RecruitmentEndAt, m.IsRecruiting)
	return err
}

func (s *PostgresStore) ListMatches(ctx context.Context) ([]repository.Match, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, host_id, start_at, activities, description, channel_id, message_id, recruitment_end_at, is_recruiting
		 FROM matches ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Match
	for rows.Next() {
		var m repository.Match
		var activities []byte
		if err := rows.Scan(&m.ID, &m.HostID, &m.StartAt, &activities, &m.Description, &m.ChannelID, &m.MessageID, &m.RecruitmentEndAt, &m.IsRecruiting); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(activities, &m.Activities); err != nil {
			return nil, fmt.Errorf("failed to decode activities for match %d: %w", m.ID, err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (s *PostgresStore) UpdateMatchRecruiting(ctx context.Context, matchID int64, isRecruiting bool) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE matches SET is_recruiting = $2 WHERE id = $1`,
		matchID, isRecruiting)
	return err
}

func (s *PostgresStore) UpdateMatchAnnouncement(ctx context.Context, matchID int64, channelID, messageID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE matches SET channel_id = $2, message_id = $3 WHERE id = $1`,
		matchID, channelID, messageID)
	return err
}

func (s *PostgresStore) DeleteMatch(ctx context.Context, matchID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM matches WHERE id = $1`, matchID)
	return err
}

func (s *PostgresStore) InsertAttendance(ctx context.Context, matchID int64, userID, activity string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_attendance (match_id, user_id, activity) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		matchID, userID, activity)
	return err
}

func (s *PostgresStore) DeleteAttendance(ctx context.Context, matchID int64, userID, activity string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM match_attendance WHERE match_id = $1 AND user_id = $2 AND activity = $3`,
		matchID, userID, activity)
	return err
}

func (s *PostgresStore) ListAttendance(ctx context.Context, matchID int64) ([]repository.AttendanceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT match_id, user_id, activity FROM match_attendance WHERE match_id = $1`,
		matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.AttendanceRecord
	for rows.Next() {
		var r repository.AttendanceRecord
		if err := rows.Scan(&r.MatchID, &r.UserID, &r.Activity); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func (s *PostgresStore) MoveAttendanceToAbsence(ctx context.Context, matchID int64, userID, activity, reason string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if _, err := tx.Exec(ctx,
		`INSERT INTO match_absence (match_id, user_id, activity, reason) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (match_id, user_id, activity) DO UPDATE SET reason = EXCLUDED.reason`,
		matchID, userID, activity, reason); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM match_attendance WHERE match_id = $1 AND user_id = $2 AND activity = $3`,
		matchID, userID, activity); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) MoveAbsenceToAttendance(ctx context.Context, matchID int64, userID, activity string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if _, err := tx.Exec(ctx,
		`DELETE FROM match_absence WHERE match_id = $1 AND user_id = $2 AND activity = $3`,
		matchID, userID, activity); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO match_attendance (match_id, user_id, activity) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		matchID, userID, activity); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ListAbsences(ctx context.Context, matchID int64) ([]repository.AbsenceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT match_id, user_id, activity, reason FROM match_absence WHERE match_id = $1`,
		matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.AbsenceRecord
	for rows.Next() {
		var r repository.AbsenceRecord
		if err := rows.Scan(&r.MatchID, &r.UserID, &r.Activity, &r.Reason); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func (s *PostgresStore) InsertReminder(ctx context.Context, matchID int64, userID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_reminders (match_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		matchID, userID)
	return err
}

func (s *PostgresStore) ListReminders(ctx context.Context, matchID int64) ([]repository.ReminderRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT match_id, user_id FROM match_reminders WHERE match_id = $1`,
		matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.ReminderRecord
	for rows.Next() {
		var r repository.ReminderRecord
		if err := rows.Scan(&r.MatchID, &r.UserID); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}
