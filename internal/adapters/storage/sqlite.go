package storage

import (
	"context"
	"errors"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
	"github.com/OlderMutt/Surface-Minder/internal/core/ports"
)

// SQLiteAdapter implements ports.SnapshotStore and ports.BaselineStore
// using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// ArtifactModel is the GORM model for ingested scan artifacts. Seq is the
// store-owned monotonic ingestion sequence; "latest" queries order by it,
// never by IngestedAt, so ordering is immune to clock skew.
type ArtifactModel struct {
	Name       string `gorm:"primaryKey"`
	Kind       string `gorm:"index"`
	Seq        uint64 `gorm:"uniqueIndex"`
	IngestedAt time.Time
}

// ObservationModel is one port observation belonging to an artifact.
type ObservationModel struct {
	ID           uint   `gorm:"primaryKey"`
	ArtifactName string `gorm:"index"`
	Host         string
	Port         int
	Proto        string
	State        string
	Service      string
}

// BaselineModel is one expected observation of a tenant's baseline.
type BaselineModel struct {
	ID      uint   `gorm:"primaryKey"`
	Tenant  string `gorm:"index"`
	Host    string
	Port    int
	Proto   string
	State   string
	Service string
	SetAt   time.Time
}

// NewSQLiteAdapter opens the database, migrates the schema (idempotent) and
// attaches the OpenTelemetry tracing plugin.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&ArtifactModel{}, &ObservationModel{}, &BaselineModel{}); err != nil {
		return nil, err
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_observation_models_host ON observation_models(host)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_baseline_models_tenant_host ON baseline_models(tenant, host)")

	return &SQLiteAdapter{db: db}, nil
}

// IngestArtifact records the artifact and its observations in one
// transaction. A name seen before yields domain.ErrDuplicateArtifact and
// leaves the store untouched; two concurrent ingestions of the same name
// are serialized by the primary key, the loser observing the same error.
func (a *SQLiteAdapter) IngestArtifact(ctx context.Context, name, kind string, observations []domain.Observation) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ArtifactModel{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateArtifact
		}

		var maxSeq uint64
		if err := tx.Model(&ArtifactModel{}).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
			return err
		}

		art := ArtifactModel{
			Name:       name,
			Kind:       kind,
			Seq:        maxSeq + 1,
			IngestedAt: time.Now().UTC(),
		}
		if err := tx.Create(&art).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateArtifact
			}
			return err
		}

		if len(observations) == 0 {
			return nil
		}
		models := make([]ObservationModel, len(observations))
		for i, o := range observations {
			models[i] = ObservationModel{
				ArtifactName: name,
				Host:         o.Host,
				Port:         o.Port,
				Proto:        o.Proto,
				State:        o.State,
				Service:      o.Service,
			}
		}
		return tx.CreateInBatches(models, 100).Error
	})
}

// LatestArtifact returns the highest-sequence artifact of the given kind,
// or nil when none exists.
func (a *SQLiteAdapter) LatestArtifact(ctx context.Context, kind string) (*domain.Artifact, error) {
	var models []ArtifactModel
	err := a.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("seq desc").
		Limit(1).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	art := toArtifact(models[0])
	return &art, nil
}

// ObservationsFor builds a snapshot from the named artifacts, folding them
// in the order given so the later artifact wins on a key collision.
func (a *SQLiteAdapter) ObservationsFor(ctx context.Context, names []string) (domain.Snapshot, error) {
	snap := domain.Snapshot{}
	for _, name := range names {
		var models []ObservationModel
		err := a.db.WithContext(ctx).
			Where("artifact_name = ?", name).
			Order("id").
			Find(&models).Error
		if err != nil {
			return nil, err
		}
		observations := make([]domain.Observation, len(models))
		for i, m := range models {
			observations[i] = toObservation(m)
		}
		snap.Add(observations)
	}
	return snap, nil
}

// Artifacts lists every ingested artifact in sequence order.
func (a *SQLiteAdapter) Artifacts(ctx context.Context) ([]domain.Artifact, error) {
	var models []ArtifactModel
	if err := a.db.WithContext(ctx).Order("seq").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Artifact, len(models))
	for i, m := range models {
		out[i] = toArtifact(m)
	}
	return out, nil
}

// SetBaseline replaces the tenant's entire baseline: delete everything,
// insert the new set with a fresh timestamp, all in one transaction. An
// empty slice leaves the tenant with an explicitly empty baseline.
func (a *SQLiteAdapter) SetBaseline(ctx context.Context, tenant string, observations []domain.Observation) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant = ?", tenant).Delete(&BaselineModel{}).Error; err != nil {
			return err
		}
		if len(observations) == 0 {
			return nil
		}
		setAt := time.Now().UTC()
		models := make([]BaselineModel, len(observations))
		for i, o := range observations {
			models[i] = BaselineModel{
				Tenant:  tenant,
				Host:    o.Host,
				Port:    o.Port,
				Proto:   o.Proto,
				State:   o.State,
				Service: o.Service,
				SetAt:   setAt,
			}
		}
		return tx.CreateInBatches(models, 100).Error
	})
}

// BaselineFor returns the tenant's baseline as a snapshot. An unknown
// tenant yields an empty snapshot.
func (a *SQLiteAdapter) BaselineFor(ctx context.Context, tenant string) (domain.Snapshot, error) {
	var models []BaselineModel
	err := a.db.WithContext(ctx).
		Where("tenant = ?", tenant).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	observations := make([]domain.Observation, len(models))
	for i, m := range models {
		observations[i] = domain.Observation{Host: m.Host, Port: m.Port, Proto: m.Proto, State: m.State, Service: m.Service}
	}
	return domain.BuildSnapshot(observations), nil
}

// Tenants lists the tenants that currently have baseline entries.
func (a *SQLiteAdapter) Tenants(ctx context.Context) ([]string, error) {
	var tenants []string
	err := a.db.WithContext(ctx).
		Model(&BaselineModel{}).
		Distinct("tenant").
		Order("tenant").
		Pluck("tenant", &tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// Entries dumps all baseline rows across tenants, e.g. for CSV export.
func (a *SQLiteAdapter) Entries(ctx context.Context) ([]domain.BaselineEntry, error) {
	var models []BaselineModel
	if err := a.db.WithContext(ctx).Order("tenant, host, port, proto").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.BaselineEntry, len(models))
	for i, m := range models {
		out[i] = domain.BaselineEntry{
			Tenant: m.Tenant,
			Observation: domain.Observation{
				Host: m.Host, Port: m.Port, Proto: m.Proto, State: m.State, Service: m.Service,
			},
			SetAt: m.SetAt,
		}
	}
	return out, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toArtifact(m ArtifactModel) domain.Artifact {
	return domain.Artifact{Name: m.Name, Kind: m.Kind, Seq: m.Seq, IngestedAt: m.IngestedAt}
}

func toObservation(m ObservationModel) domain.Observation {
	return domain.Observation{Host: m.Host, Port: m.Port, Proto: m.Proto, State: m.State, Service: m.Service}
}

// isUniqueViolation detects the SQLite constraint error raised when two
// ingestions race on the same artifact name.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Ensure interface compliance
var (
	_ ports.SnapshotStore = (*SQLiteAdapter)(nil)
	_ ports.BaselineStore = (*SQLiteAdapter)(nil)
)
