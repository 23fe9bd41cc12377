package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlscreen/amlreport/pkg/model/modeltest"
)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "archive.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func steppingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := openStore(t, WithClock(steppingClock(start)))

	p := modeltest.HighRisk(t)
	pdf := []byte("%PDF-1.3 fake body")
	rec, err := s.Save(ctx, p.Report, []byte(modeltest.HighRiskJSON), pdf)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, modeltest.ReportID, rec.ReportID)
	assert.Equal(t, "HIGH", rec.Level)
	assert.Equal(t, 85.0, rec.Score)
	assert.Equal(t, Hash(pdf), rec.PDFHash)
	assert.Len(t, rec.PDFHash, 16)
	assert.Equal(t, len(modeltest.HighRiskJSON), rec.PayloadSize)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, pdf, got.PDF)
	assert.Equal(t, modeltest.Address, got.Address)
	assert.Equal(t, "ethereum", got.Chain)
	assert.True(t, start.Add(time.Minute).Equal(got.CreatedAt))
}

func TestPayloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	rec, err := s.Save(ctx, modeltest.HighRisk(t).Report, []byte(modeltest.HighRiskJSON), []byte("pdf"))
	require.NoError(t, err)

	data, err := s.Payload(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, modeltest.HighRiskJSON, string(data))
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, WithClock(steppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))))

	var ids []string
	for _, level := range []string{"LOW", "MEDIUM", "HIGH"} {
		rec, err := s.Save(ctx, modeltest.Report(level, 10, "APPROVE"), []byte("{}"), []byte("pdf-"+level))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)
	assert.Equal(t, "HIGH", all[0].Level)
	assert.Nil(t, all[0].PDF)

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Payload(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")

	s, err := Open(path)
	require.NoError(t, err)
	rec, err := s.Save(ctx, modeltest.Report("LOW", 1, "APPROVE"), []byte("{}"), []byte("pdf"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.PDFHash, got.PDFHash)
}

func TestMissingReportID(t *testing.T) {
	r := modeltest.Report("LOW", 1, "APPROVE")
	r.ID = ""
	rec, err := openStore(t).Save(context.Background(), r, nil, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "N/A", rec.ReportID)
}

func TestSaveEmptyPayloadAndPDF(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	rec, err := s.Save(ctx, modeltest.Report("LOW", 1, "APPROVE"), []byte{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.PayloadSize)

	data, err := s.Payload(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, data)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PDF)
}
