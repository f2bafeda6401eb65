package coordination

import (
	"context"
	"database/sql"
	"time"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/juju/clock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// ComponentType defines the coordination store component type identifier
const ComponentType = "coordination"

// defaultPollInterval is how often a waiting host re-reads peer stages.
const defaultPollInterval = 50 * time.Millisecond

// stageRecord is one stage announcement row. Hosts append a row per
// transition; a host's current stage is the max over its rows.
type stageRecord struct {
	bun.BaseModel `bun:"table:backup_stages"`

	ID        int64     `bun:"id,pk,autoincrement"`
	BackupID  string    `bun:"backup_id,notnull"`
	HostID    string    `bun:"host_id,notnull"`
	Stage     int       `bun:"stage,notnull"`
	IsError   bool      `bun:"is_error,notnull,default:false"`
	Message   string    `bun:"message"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Store is a StageCoordinator backed by a SQLite database on a shared
// volume. Each cooperating host opens the same file and polls peer rows.
type Store struct {
	db           *bun.DB
	backupID     string
	clk          clock.Clock
	logger       zerolog.Logger
	pollInterval time.Duration
}

// NewStore opens (and if needed initializes) the coordination database.
// backupID scopes rows to one backup operation so that concurrent backups
// sharing the database do not see each other.
func NewStore(dbPath, backupID string, logger zerolog.Logger) (*Store, error) {
	sqldb, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, errors.New(ErrStoreOpenFailed, "failed to open coordination database", err).AddContext("path", dbPath)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if _, err := db.NewCreateTable().Model((*stageRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		db.Close()
		return nil, errors.New(ErrStoreOpenFailed, "failed to create backup_stages table", err).AddContext("path", dbPath)
	}

	return &Store{
		db:           db,
		backupID:     backupID,
		clk:          clock.WallClock,
		logger:       logger.With().Str("component", "coordination").Logger(),
		pollInterval: defaultPollInterval,
	}, nil
}

// SyncStage records hostID's stage and polls until every peer confirms it.
func (s *Store) SyncStage(ctx context.Context, hostID string, stage int, peers []string, timeout time.Duration) error {
	if err := s.insert(ctx, hostID, stage, false, ""); err != nil {
		return err
	}

	deadline := s.clk.Now().Add(timeout)
	for {
		reached, failedHost, failedMsg, err := s.checkPeers(ctx, peers, stage)
		if err != nil {
			return err
		}
		if failedHost != "" {
			return errors.New(ErrPeerFailed, "peer reported failure", nil).
				AddContext("peer", failedHost).
				AddContext("peer_message", failedMsg)
		}
		if reached {
			return nil
		}

		remaining := deadline.Sub(s.clk.Now())
		if remaining <= 0 {
			return errors.Newf(ErrStageTimeout, "timed out waiting for peers to reach stage %d", stage).
				AddContext("host", hostID)
		}
		wait := s.pollInterval
		if wait > remaining {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return errors.New(ErrStageTimeout, "stage wait cancelled", ctx.Err()).AddContext("host", hostID)
		case <-s.clk.After(wait):
		}
	}
}

// SyncStageError records a host failure. Best effort: insert errors are
// logged and swallowed.
func (s *Store) SyncStageError(hostID string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.insert(ctx, hostID, 0, true, message); err != nil {
		s.logger.Error().Err(err).Str("host", hostID).Msg("Failed to record backup failure")
		return
	}
	s.logger.Error().Str("host", hostID).Str("message", message).Msg("Host reported backup failure")
}

func (s *Store) insert(ctx context.Context, hostID string, stage int, isError bool, message string) error {
	rec := &stageRecord{
		BackupID: s.backupID,
		HostID:   hostID,
		Stage:    stage,
		IsError:  isError,
		Message:  message,
	}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return errors.New(ErrStoreQueryFailed, "failed to record stage", err).AddContext("host", hostID)
	}
	return nil
}

func (s *Store) checkPeers(ctx context.Context, peers []string, stage int) (reached bool, failedHost, failedMsg string, err error) {
	var rows []stageRecord
	if err := s.db.NewSelect().Model(&rows).Where("backup_id = ?", s.backupID).Scan(ctx); err != nil {
		return false, "", "", errors.New(ErrStoreQueryFailed, "failed to read peer stages", err)
	}

	current := make(map[string]int, len(peers))
	for _, row := range rows {
		if row.IsError {
			return false, row.HostID, row.Message, nil
		}
		if row.Stage > current[row.HostID] {
			current[row.HostID] = row.Stage
		}
	}
	for _, peer := range peers {
		got, ok := current[peer]
		if !ok || got < stage {
			return false, "", "", nil
		}
	}
	return true, "", "", nil
}

// GetType returns the component type identifier
func (s *Store) GetType() string {
	return ComponentType
}

// Shutdown gracefully shuts down the coordination store.
func (s *Store) Shutdown(ctx context.Context) error {
	return s.db.Close()
}
