package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"hepevd/internal/domain"
)

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// timeLayout is fixed width so that stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a stored timestamp, zero when malformed
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads the columns of recordColumns into an EventRecord
func scanRecord(s scanner) (*domain.EventRecord, error) {
	var (
		rec                  domain.EventRecord
		name, source         sql.NullString
		createdAt, updatedAt string
	)
	err := s.Scan(&rec.ID, &name, &source,
		&rec.Summary.Hits, &rec.Summary.MCHits, &rec.Summary.Markers,
		&rec.Summary.Particles, &rec.Summary.Volumes,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.Name = nullToString(name)
	rec.Source = nullToString(source)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

// decodeEvent unmarshals a stored payload
func decodeEvent(data []byte) (*domain.Event, error) {
	var event domain.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
	}
	event.Normalize()
	return &event, nil
}
