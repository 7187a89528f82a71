package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Fidelio-foundation/Fidelio/replay"
)

var (
	// See https://www.sqlite.org/pragma.html
	kConfigureConnection = []string{
		"PRAGMA journal_mode = OFF",
		"PRAGMA synchronous = OFF",
		"PRAGMA locking_mode = EXCLUSIVE",
	}
)

const (
	kCreateActionTable = "CREATE TABLE IF NOT EXISTS action (seq INTEGER PRIMARY KEY AUTOINCREMENT, kind TEXT, block_hash BLOB, payload BLOB)"
	kAddActionStmt     = "INSERT INTO action(kind, block_hash, payload) VALUES (?,?,?)"
	kCountActionsStmt  = "SELECT COUNT(*) FROM action"
)

// SQLite stores every action as one row of an embedded SQLite
// database, the payload being the JSON wire form.
type SQLite struct {
	db            *sql.DB
	addActionStmt *sql.Stmt
}

func NewSQLite(file string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", "file:"+file)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite; %s", err)
	}
	for _, cmd := range kConfigureConnection {
		if _, err := db.Exec(cmd); err != nil {
			return nil, fmt.Errorf("failed to configure connection with %s; %s", cmd, err)
		}
	}
	if _, err := db.Exec(kCreateActionTable); err != nil {
		return nil, fmt.Errorf("failed to create action table; %s", err)
	}
	addAction, err := db.Prepare(kAddActionStmt)
	if err != nil {
		return nil, err
	}
	return &SQLite{
		db:            db,
		addActionStmt: addAction,
	}, nil
}

func (s *SQLite) Record(action *replay.Action) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return err
	}
	var blockHash []byte
	if action.BlockHash != nil {
		blockHash = action.BlockHash[:]
	}
	_, err = s.addActionStmt.Exec(string(action.Kind), blockHash, payload)
	return err
}

// Count returns the number of recorded actions.
func (s *SQLite) Count() (int64, error) {
	var count int64
	err := s.db.QueryRow(kCountActionsStmt).Scan(&count)
	return count, err
}

func (s *SQLite) Close() error {
	if err := s.addActionStmt.Close(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}
