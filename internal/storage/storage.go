// Package storage archives finished games in BadgerDB.
package storage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/benbeisheim/ochello-backend/internal/rules"
	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyStats      = "stats"
	keyGamePrefix = "game/"
)

var ErrRecordNotFound = errors.New("game record not found")

// GameRecord is a finished game as stored in the archive.
type GameRecord struct {
	ID            string      `json:"id"`
	Winner        rules.Color `json:"winner"`
	Local         bool        `json:"local"`
	White         string      `json:"white"`
	Black         string      `json:"black"`
	Plies         int         `json:"plies"`
	History       []string    `json:"history"`
	FinalPosition string      `json:"final_position"`
	FinishedAt    time.Time   `json:"finished_at"`
}

// Stats counts archived results.
type Stats struct {
	GamesPlayed int `json:"games_played"`
	WhiteWins   int `json:"white_wins"`
	BlackWins   int `json:"black_wins"`
	LocalGames  int `json:"local_games"`
	LongestGame int `json:"longest_game_plies"`
}

// Archive wraps BadgerDB for finished-game records.
type Archive struct {
	db *badger.DB
}

// Open opens the archive in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Archive, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Archive{db: db}, nil
}

// Close closes the database
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// RecordGame stores rec and folds it into the stats. Recording the same ID twice
// leaves the stats unchanged.
func (a *Archive) RecordGame(rec GameRecord) error {
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := []byte(keyGamePrefix + rec.ID)

	return a.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return txn.Set(key, data)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		stats, err := loadStats(txn)
		if err != nil {
			return err
		}
		stats.GamesPlayed++
		switch rec.Winner {
		case rules.White:
			stats.WhiteWins++
		case rules.Black:
			stats.BlackWins++
		}
		if rec.Local {
			stats.LocalGames++
		}
		if rec.Plies > stats.LongestGame {
			stats.LongestGame = rec.Plies
		}
		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(keyStats), statsData); err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// LoadGame returns the record for id, or ErrRecordNotFound.
func (a *Archive) LoadGame(id string) (GameRecord, error) {
	var rec GameRecord

	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyGamePrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})

	return rec, err
}

// LoadStats returns the archive totals, zero if nothing was recorded.
func (a *Archive) LoadStats() (Stats, error) {
	var stats Stats

	err := a.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})

	return stats, err
}

func loadStats(txn *badger.Txn) (Stats, error) {
	var stats Stats

	item, err := txn.Get([]byte(keyStats))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return stats, nil
	}
	if err != nil {
		return stats, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stats)
	})
	return stats, err
}

// ListGames returns up to limit records in key order. limit <= 0 means all.
func (a *Archive) ListGames(limit int) ([]GameRecord, error) {
	records := make([]GameRecord, 0)
	prefix := []byte(keyGamePrefix)

	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}
