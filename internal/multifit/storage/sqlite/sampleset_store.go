package sqlite

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/provingground-moe/meas-modelfit/internal/multifit"
)

// SampleSetRecord is one persisted fit result.
type SampleSetRecord struct {
	SampleSetID    string
	Name           string
	Version        int64
	ParameterDim   int
	CoefficientDim int
	SampleCount    int
	LogEvidence    *float64
	CreatedAtNs    int64

	// Set is populated on reads that decode the payload.
	Set *multifit.SampleSet
}

// SampleSetStore provides persistence for sample sets.
type SampleSetStore struct {
	db *sql.DB
}

// NewSampleSetStore creates a store backed by the given database.
func NewSampleSetStore(db *sql.DB) *SampleSetStore {
	return &SampleSetStore{db: db}
}

// Insert persists a sample set under a name, assigning the next
// version for that name. If rec.SampleSetID is empty a new UUID is
// generated. The record's Version, SampleSetID and CreatedAtNs are
// filled in on success.
func (s *SampleSetStore) Insert(rec *SampleSetRecord, set *multifit.SampleSet) error {
	if rec.Name == "" {
		return fmt.Errorf("sample set record needs a name")
	}
	if set == nil || set.Len() == 0 {
		return fmt.Errorf("refusing to persist an empty sample set")
	}
	if rec.SampleSetID == "" {
		rec.SampleSetID = uuid.New().String()
	}
	if rec.CreatedAtNs == 0 {
		rec.CreatedAtNs = time.Now().UnixNano()
	}
	rec.ParameterDim = set.ParameterDim()
	rec.CoefficientDim = set.CoefficientDim()
	rec.SampleCount = set.Len()
	if logZ, err := set.LogEvidence(); err == nil {
		v := logZ
		rec.LogEvidence = &v
	}

	payload, err := encodeSampleSet(set)
	if err != nil {
		return fmt.Errorf("encode sample set: %w", err)
	}

	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin insert: %w", err)
		}
		defer tx.Rollback()

		var version sql.NullInt64
		err = tx.QueryRow(
			`SELECT MAX(version) FROM sample_sets WHERE name = ?`, rec.Name,
		).Scan(&version)
		if err != nil {
			return fmt.Errorf("next version for %q: %w", rec.Name, err)
		}
		rec.Version = version.Int64 + 1

		_, err = tx.Exec(`
			INSERT INTO sample_sets (
				sample_set_id, name, version, parameter_dim, coefficient_dim,
				sample_count, log_evidence, payload, created_at_ns
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.SampleSetID, rec.Name, rec.Version,
			rec.ParameterDim, rec.CoefficientDim, rec.SampleCount,
			nullFloat(rec.LogEvidence), payload, rec.CreatedAtNs,
		)
		if err != nil {
			return fmt.Errorf("insert sample set %q: %w", rec.Name, err)
		}
		return tx.Commit()
	})
}

// Get retrieves a record by ID, decoding its payload.
func (s *SampleSetStore) Get(sampleSetID string) (*SampleSetRecord, error) {
	return s.getWhere(`sample_set_id = ?`, sampleSetID)
}

// GetLatest retrieves the highest version stored under a name,
// decoding its payload.
func (s *SampleSetStore) GetLatest(name string) (*SampleSetRecord, error) {
	return s.getWhere(`name = ? ORDER BY version DESC LIMIT 1`, name)
}

// GetVersion retrieves one named version, decoding its payload.
func (s *SampleSetStore) GetVersion(name string, version int64) (*SampleSetRecord, error) {
	return s.getWhere(`name = ? AND version = ?`, name, version)
}

// List returns the metadata of every version stored under a name,
// newest first, without decoding payloads.
func (s *SampleSetStore) List(name string) ([]*SampleSetRecord, error) {
	rows, err := s.db.Query(`
		SELECT sample_set_id, name, version, parameter_dim, coefficient_dim,
		       sample_count, log_evidence, created_at_ns
		FROM sample_sets WHERE name = ? ORDER BY version DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("list sample sets %q: %w", name, err)
	}
	defer rows.Close()

	var recs []*SampleSetRecord
	for rows.Next() {
		var rec SampleSetRecord
		var logZ sql.NullFloat64
		if err := rows.Scan(
			&rec.SampleSetID, &rec.Name, &rec.Version,
			&rec.ParameterDim, &rec.CoefficientDim, &rec.SampleCount,
			&logZ, &rec.CreatedAtNs,
		); err != nil {
			return nil, fmt.Errorf("scan sample set row: %w", err)
		}
		if logZ.Valid {
			v := logZ.Float64
			rec.LogEvidence = &v
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// Delete removes one record by ID.
func (s *SampleSetStore) Delete(sampleSetID string) error {
	return retryOnBusy(func() error {
		res, err := s.db.Exec(`DELETE FROM sample_sets WHERE sample_set_id = ?`, sampleSetID)
		if err != nil {
			return fmt.Errorf("delete sample set: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("sample set not found: %s", sampleSetID)
		}
		return nil
	})
}

func (s *SampleSetStore) getWhere(where string, args ...any) (*SampleSetRecord, error) {
	query := `
		SELECT sample_set_id, name, version, parameter_dim, coefficient_dim,
		       sample_count, log_evidence, payload, created_at_ns
		FROM sample_sets WHERE ` + where
	var rec SampleSetRecord
	var logZ sql.NullFloat64
	var payload []byte
	err := s.db.QueryRow(query, args...).Scan(
		&rec.SampleSetID, &rec.Name, &rec.Version,
		&rec.ParameterDim, &rec.CoefficientDim, &rec.SampleCount,
		&logZ, &payload, &rec.CreatedAtNs,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sample set not found (%v)", args)
	}
	if err != nil {
		return nil, fmt.Errorf("get sample set: %w", err)
	}
	if logZ.Valid {
		v := logZ.Float64
		rec.LogEvidence = &v
	}
	set, err := decodeSampleSet(payload, rec.ParameterDim, rec.CoefficientDim)
	if err != nil {
		return nil, fmt.Errorf("decode sample set %s: %w", rec.SampleSetID, err)
	}
	rec.Set = set
	return &rec, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// retryOnBusy retries a write a few times when sqlite reports lock
// contention that outlived the connection's busy timeout.
func retryOnBusy(fn func() error) error {
	const attempts = 5
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(i+1) * 50 * time.Millisecond)
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// samplePayload is the gob wire form of a sample set. Matrix contents
// travel as raw slices because the gonum types keep their data
// unexported.
type samplePayload struct {
	Points []pointPayload
}

type pointPayload struct {
	Parameters  []float64
	R           float64
	G           []float64
	F           []float64 // upper triangle, row major
	LogProposal float64
	Marginal    float64
	Weight      float64
}

func encodeSampleSet(set *multifit.SampleSet) ([]byte, error) {
	payload := samplePayload{Points: make([]pointPayload, 0, set.Len())}
	dim := set.CoefficientDim()
	for i := range set.Points() {
		p := &set.Points()[i]
		pp := pointPayload{
			Parameters:  p.Parameters,
			R:           p.Joint.R,
			G:           make([]float64, dim),
			F:           make([]float64, dim*(dim+1)/2),
			LogProposal: p.LogProposal,
			Marginal:    p.Marginal,
			Weight:      p.Weight,
		}
		for j := 0; j < dim; j++ {
			pp.G[j] = p.Joint.G.AtVec(j)
		}
		k := 0
		for r := 0; r < dim; r++ {
			for c := r; c < dim; c++ {
				pp.F[k] = p.Joint.F.At(r, c)
				k++
			}
		}
		payload.Points = append(payload.Points, pp)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(payload); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSampleSet(blob []byte, parameterDim, coefficientDim int) (*multifit.SampleSet, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer gz.Close()

	var payload samplePayload
	if err := gob.NewDecoder(gz).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	set := multifit.NewSampleSet(parameterDim, coefficientDim)
	set.Reserve(len(payload.Points))
	for i := range payload.Points {
		pp := &payload.Points[i]
		joint := multifit.NewLogGaussian(coefficientDim)
		joint.R = pp.R
		for j := 0; j < coefficientDim && j < len(pp.G); j++ {
			joint.G.SetVec(j, pp.G[j])
		}
		k := 0
		for r := 0; r < coefficientDim; r++ {
			for c := r; c < coefficientDim && k < len(pp.F); c++ {
				joint.F.SetSym(r, c, pp.F[k])
				k++
			}
		}
		point := multifit.SamplePoint{
			Parameters:  pp.Parameters,
			Joint:       joint,
			LogProposal: pp.LogProposal,
			Marginal:    pp.Marginal,
			Weight:      pp.Weight,
		}
		if err := set.Add(point); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return set, nil
}
