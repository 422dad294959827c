package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

var _ feedback.Source = (*DB)(nil)

const fetchFeedbackQuery = `
	SELECT f.id, f.user_id, f.date, m.slot, m.rating, m.comment, m.submitted_at
	FROM feedback f
	LEFT JOIN meal_entries m ON m.feedback_id = f.id
	WHERE f.date >= ? AND f.date < ?
	ORDER BY f.date, f.user_id, f.id, m.slot`

// FetchFeedback returns the records dated in [start, end), ordered by date
// then user. Entries for unknown slots are ignored.
func (db *DB) FetchFeedback(ctx context.Context, start, end time.Time) ([]feedback.Record, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(fetchFeedbackQuery),
		start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var (
		records []feedback.Record
		lastID  int64 = -1
	)
	for rows.Next() {
		var (
			id          int64
			user, date  string
			slot        sql.NullString
			rating      sql.NullInt64
			comment     sql.NullString
			submittedAt sql.NullString
		)
		if err := rows.Scan(&id, &user, &date, &slot, &rating, &comment, &submittedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}

		if id != lastID {
			d, err := time.Parse(dateLayout, date)
			if err != nil {
				return nil, fmt.Errorf("feedback %d: parsing date %q: %w", id, date, err)
			}
			records = append(records, feedback.Record{
				Date:  d,
				User:  user,
				Meals: make(map[feedback.MealSlot]*feedback.MealEntry),
			})
			lastID = id
		}
		if !slot.Valid {
			continue
		}
		s := feedback.MealSlot(slot.String)
		if !s.Valid() {
			continue
		}

		entry := &feedback.MealEntry{Comment: comment.String}
		if rating.Valid {
			entry.Rating = feedback.Rating(int(rating.Int64))
		}
		if submittedAt.Valid && submittedAt.String != "" {
			t, err := time.Parse(time.RFC3339, submittedAt.String)
			if err != nil {
				return nil, fmt.Errorf("feedback %d: parsing submitted_at %q: %w", id, submittedAt.String, err)
			}
			entry.SubmittedAt = &t
		}
		records[len(records)-1].Meals[s] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback: %w", err)
	}
	return records, nil
}

// CountRegisteredUsers counts users, leaving out admins when asked.
func (db *DB) CountRegisteredUsers(ctx context.Context, excludingAdmins bool) (int, error) {
	query, args := "SELECT COUNT(*) FROM users", []any(nil)
	if excludingAdmins {
		query, args = "SELECT COUNT(*) FROM users WHERE is_admin = ?", []any{false}
	}

	var n int
	if err := db.conn.QueryRowContext(ctx, db.rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// UpsertUser inserts u or updates the user with the same id.
func (db *DB) UpsertUser(ctx context.Context, u User) error {
	return db.upsertUser(ctx, db.conn, u)
}

func (db *DB) upsertUser(ctx context.Context, q querier, u User) error {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := q.ExecContext(ctx, db.rebind(`
		INSERT INTO users (id, name, email, is_admin, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, email = excluded.email, is_admin = excluded.is_admin`),
		u.ID, u.Name, u.Email, u.IsAdmin, created.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting user %s: %w", u.ID, err)
	}
	return nil
}

// SaveFeedback stores r, replacing the meals already recorded for the same
// user and date slot by slot.
func (db *DB) SaveFeedback(ctx context.Context, r feedback.Record) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := db.saveFeedback(ctx, tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *DB) saveFeedback(ctx context.Context, q querier, r feedback.Record) error {
	if err := feedback.Validate([]feedback.Record{r}); err != nil {
		return err
	}
	date := r.Date.Format(dateLayout)

	var id int64
	err := q.QueryRowContext(ctx, db.rebind(`
		INSERT INTO feedback (user_id, date, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET updated_at = excluded.updated_at
		RETURNING id`),
		r.User, date, time.Now().UTC().Format(time.RFC3339)).Scan(&id)
	if err != nil {
		return fmt.Errorf("saving feedback %s/%s: %w", r.User, date, err)
	}

	for _, slot := range feedback.Slots {
		entry := r.Meals[slot]
		if entry == nil {
			continue
		}
		var rating, submitted any
		if entry.Rating != nil {
			rating = *entry.Rating
		}
		if entry.SubmittedAt != nil {
			submitted = entry.SubmittedAt.UTC().Format(time.RFC3339)
		}
		_, err := q.ExecContext(ctx, db.rebind(`
			INSERT INTO meal_entries (feedback_id, slot, rating, comment, submitted_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (feedback_id, slot) DO UPDATE SET
				rating = excluded.rating, comment = excluded.comment, submitted_at = excluded.submitted_at`),
			id, string(slot), rating, entry.Comment, submitted)
		if err != nil {
			return fmt.Errorf("saving %s entry for %s/%s: %w", slot, r.User, date, err)
		}
	}
	return nil
}

// SaveAll stores users then records in a single transaction.
func (db *DB) SaveAll(ctx context.Context, users []User, records []feedback.Record) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range users {
		if err := db.upsertUser(ctx, tx, u); err != nil {
			return err
		}
	}
	for _, r := range records {
		if err := db.saveFeedback(ctx, tx, r); err != nil {
			return err
		}
	}
	return tx.Commit()
}
