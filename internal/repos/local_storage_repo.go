package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrQuotaExceeded is returned by Set when a session would hold more bytes
// than the configured quota.
var ErrQuotaExceeded = errors.New("local storage quota exceeded")

// LocalStorageRepo is a per-session key/value store, the server-side
// counterpart of browser local storage. Writes are last-write-wins.
type LocalStorageRepo struct {
	db    *sqlx.DB
	quota int
}

func NewLocalStorageRepo(db *sqlx.DB, quota int) *LocalStorageRepo {
	return &LocalStorageRepo{db: db, quota: quota}
}

func (r *LocalStorageRepo) Get(sid, key string) (string, bool, error) {
	var v string
	err := r.db.Get(&v, `SELECT value FROM local_storage WHERE session_id=? AND key=?`, sid, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key, counting key and value bytes of every entry in
// the session against the quota.
func (r *LocalStorageRepo) Set(sid, key, value string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if r.quota > 0 {
		var used int
		if err := tx.Get(&used, `
			SELECT COALESCE(SUM(length(CAST(key AS BLOB)) + length(CAST(value AS BLOB))), 0)
			FROM local_storage WHERE session_id=? AND key != ?
		`, sid, key); err != nil {
			return err
		}
		if used+len(key)+len(value) > r.quota {
			return ErrQuotaExceeded
		}
	}
	if _, err := tx.Exec(`
		INSERT INTO local_storage(session_id, key, value, updated_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, key) DO UPDATE
		SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, sid, key, value); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *LocalStorageRepo) Remove(sid, key string) error {
	_, err := r.db.Exec(`DELETE FROM local_storage WHERE session_id=? AND key=?`, sid, key)
	return err
}

// Clear drops every key of a session.
func (r *LocalStorageRepo) Clear(sid string) error {
	_, err := r.db.Exec(`DELETE FROM local_storage WHERE session_id=?`, sid)
	return err
}

// For scopes the store to one session.
func (r *LocalStorageRepo) For(sid string) *SessionStorage {
	return &SessionStorage{repo: r, sid: sid}
}

// SessionStorage exposes the browser-style GetItem/SetItem/RemoveItem API
// for a single session.
type SessionStorage struct {
	repo *LocalStorageRepo
	sid  string
}

func (s *SessionStorage) GetItem(key string) (string, bool, error) { return s.repo.Get(s.sid, key) }
func (s *SessionStorage) SetItem(key, value string) error { return s.repo.Set(s.sid, key, value) }
func (s *SessionStorage) RemoveItem(key string) error { return s.repo.Remove(s.sid, key) }
