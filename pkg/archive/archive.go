// Package archive keeps generated reports for regulatory record-keeping.
// Each record stores the rendered PDF, the zstd-compressed input payload and
// the screening verdict in a local SQLite database.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/spaolacci/murmur3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/duration"
	"github.com/amlscreen/amlreport/pkg/model"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("archive: record not found")

// Record is one archived report.
type Record struct {
	ID       string  `json:"id"`
	ReportID string  `json:"reportId"`
	Chain    string  `json:"chain"`
	Address  string  `json:"address"`
	Level    string  `json:"level"`
	Score    float64 `json:"score"`

	// PDFHash is 16 hex digits of murmur3-64 over the PDF bytes
	PDFHash string `json:"pdfHash"`

	// PayloadSize is the uncompressed input size in bytes
	PayloadSize int `json:"payloadSize"`

	// PDF is only populated by Get
	PDF []byte `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// Store is a SQLite-backed archive. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	enc *zstd.Encoder
	dec *zstd.Decoder
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation-time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens or creates the archive database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		fmt.Sprintf("PRAGMA busy_timeout=%d", duration.SQLiteBusy),
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	s := &Store{db: db, enc: enc, dec: dec, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	report_id TEXT NOT NULL,
	chain TEXT NOT NULL,
	address TEXT NOT NULL,
	level TEXT NOT NULL,
	score REAL NOT NULL,
	pdf_hash TEXT NOT NULL,
	payload BLOB NOT NULL,
	payload_size INTEGER NOT NULL,
	pdf BLOB NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
CREATE INDEX IF NOT EXISTS idx_reports_address ON reports(chain, address);
`

// Save archives one rendered report. payload is the input document as
// received; pdf is the rendered output.
func (s *Store) Save(ctx context.Context, r model.Report, payload, pdf []byte) (*Record, error) {
	rec := &Record{
		ID:          uuid.NewString(),
		ReportID:    r.ID,
		Chain:       r.Input.Chain,
		Address:     r.Input.Address,
		Level:       r.Decision.Level,
		Score:       r.Decision.Score,
		PDFHash:     Hash(pdf),
		PayloadSize: len(payload),
		CreatedAt:   s.now().UTC(),
	}
	if rec.ReportID == "" {
		rec.ReportID = defaults.NotAvailable
	}
	// Both blobs are NOT NULL; a nil slice would bind as NULL.
	packed := s.enc.EncodeAll(payload, make([]byte, 0, len(payload)))
	if pdf == nil {
		pdf = []byte{}
	}

	ctx, cancel := context.WithTimeout(ctx, duration.ArchiveWrite)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (
			id, report_id, chain, address, level, score,
			pdf_hash, payload, payload_size, pdf, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.ReportID, rec.Chain, rec.Address, rec.Level, rec.Score,
		rec.PDFHash, packed, rec.PayloadSize, pdf, rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	return rec, nil
}

// Get returns a record including its PDF.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec Record
	var created int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, report_id, chain, address, level, score,
			pdf_hash, payload_size, pdf, created_at
		FROM reports WHERE id = ?
	`, id).Scan(
		&rec.ID, &rec.ReportID, &rec.Chain, &rec.Address, &rec.Level, &rec.Score,
		&rec.PDFHash, &rec.PayloadSize, &rec.PDF, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	return &rec, nil
}

// List returns up to limit records, newest first, without PDF bytes.
// A non-positive limit selects defaults.ArchiveListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaults.ArchiveListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, report_id, chain, address, level, score,
			pdf_hash, payload_size, created_at
		FROM reports
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var created int64
		if err := rows.Scan(
			&rec.ID, &rec.ReportID, &rec.Chain, &rec.Address, &rec.Level, &rec.Score,
			&rec.PDFHash, &rec.PayloadSize, &created,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Payload returns the decompressed input document of a record.
func (s *Store) Payload(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	var packed []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE id = ?`, id).Scan(&packed)
	s.mu.RUnlock()

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get payload: %w", err)
	}
	data, err := s.dec.DecodeAll(packed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return data, nil
}

// Close releases the database and codec resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// Hash returns 16 hex digits of murmur3-64 over data.
func Hash(data []byte) string {
	return fmt.Sprintf("%016x", murmur3.Sum64(data))
}
