package backup

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/gear6io/glacier/server/catalog"
	"github.com/gear6io/glacier/server/coordination"
	"github.com/gear6io/glacier/server/paths"
	"github.com/gear6io/glacier/server/types"
	"github.com/gear6io/glacier/utils"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/rs/zerolog"
)

// TargetKey identifies one table under collection: its qualified name plus
// the temporary flag. Ordering is lexicographic on the name first.
type TargetKey struct {
	Name      types.QualifiedName
	Temporary bool
}

// Less orders target keys by name, then by the temporary flag.
func (k TargetKey) Less(other TargetKey) bool {
	if k.Name != other.Name {
		return k.Name.Less(other.Name)
	}
	return !k.Temporary && other.Temporary
}

// tableInfo is everything collected about one table in the current pass.
// The database and table handles are shared references owned by the
// catalog; the lock is released when the pass is discarded or the
// collector is closed.
type tableInfo struct {
	database   catalog.Database
	table      catalog.Table
	lock       catalog.TableLock
	definition *types.TableDefinition
	dataPath   string
	partitions []string
}

// databaseInfo is everything collected about one database in the current
// pass.
type databaseInfo struct {
	database   catalog.Database
	definition *types.DatabaseDefinition
}

// Config assembles a Collector's collaborators.
type Config struct {
	Elements    []Element
	Settings    Settings
	Catalog     catalog.Catalog
	Coordinator coordination.StageCoordinator

	// PathManager defaults to paths.NewManager().
	PathManager paths.PathManager

	// Clock defaults to the wall clock.
	Clock clock.Clock

	Logger zerolog.Logger
}

// Collector assembles a consistent list of backup entries from a live
// catalog. A Collector is single-use: Run may be called once. The shared
// locks of the winning pass stay held until Close, keeping the snapshot
// stable while the entries are written out.
type Collector struct {
	elements    []Element
	settings    Settings
	catalog     catalog.Catalog
	coordinator coordination.StageCoordinator
	pathManager paths.PathManager
	clk         clock.Clock
	logger      zerolog.Logger

	// backupID scopes coordination rows; lockOwner identifies this
	// operation to the catalog's lock manager.
	backupID  string
	lockOwner string

	stage      Stage
	rootPath   string
	shardNum   int
	replicaNum int
	renaming   *RenamingMap

	databaseInfos map[string]*databaseInfo
	tableInfos    map[TargetKey]*tableInfo
	consistent    bool

	havePrevious          bool
	previousDatabaseNames map[string]struct{}
	previousTableKeys     map[TargetKey]struct{}

	entries   []types.Entry
	postTasks []types.PostTask
}

// NewCollector creates a collector for one backup operation.
func NewCollector(cfg Config) (*Collector, error) {
	if cfg.Catalog == nil {
		return nil, errors.New(ErrInvalidConfig, "catalog is required", nil)
	}
	if cfg.Coordinator == nil {
		return nil, errors.New(ErrInvalidConfig, "stage coordinator is required", nil)
	}
	pm := cfg.PathManager
	if pm == nil {
		pm = paths.NewManager()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	backupID := utils.GenerateULIDString()
	return &Collector{
		elements:    cfg.Elements,
		settings:    cfg.Settings,
		catalog:     cfg.Catalog,
		coordinator: cfg.Coordinator,
		pathManager: pm,
		clk:         clk,
		logger:      cfg.Logger.With().Str("component", "backup-collector").Str("backup_id", backupID).Logger(),
		backupID:    backupID,
		lockOwner:   uuid.NewString(),
		stage:       StagePreparing,
	}, nil
}

// BackupID returns the operation's unique identifier.
func (c *Collector) BackupID() string {
	return c.backupID
}

// Run executes the collection and returns the complete entry list. On any
// fatal condition the error stage is announced to peers (best effort) and
// the single terminal error is returned; there is no partial result.
func (c *Collector) Run(ctx context.Context) ([]types.Entry, error) {
	entries, err := c.run(ctx)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	return entries, nil
}

func (c *Collector) run(ctx context.Context) ([]types.Entry, error) {
	if c.stage != StagePreparing {
		return nil, errors.New(ErrAlreadyCollecting, "already making backup entries", nil)
	}

	// The root path is either "/" or "/shards/<s>/replicas/<r>".
	if c.settings.HostID != "" {
		shardNum, replicaNum, err := FindShardAndReplica(c.settings.ClusterHostIDs, c.settings.HostID)
		if err != nil {
			return nil, err
		}
		c.shardNum, c.replicaNum = shardNum, replicaNum
	}
	c.rootPath = c.pathManager.RootPath(c.shardNum, c.replicaNum)
	c.logger.Debug().Str("path", c.rootPath).Msg("Using path in backup")

	c.renaming = NewRenamingMap(c.elements)

	if err := c.setStage(ctx, StageFindingTables); err != nil {
		return nil, err
	}
	if err := c.collectDatabasesAndTables(ctx); err != nil {
		return nil, err
	}
	if err := c.makeEntriesForDatabaseDefinitions(); err != nil {
		return nil, err
	}
	if err := c.makeEntriesForTableDefinitions(); err != nil {
		return nil, err
	}

	if err := c.setStage(ctx, StageExtractingData); err != nil {
		return nil, err
	}
	if err := c.makeEntriesForTableData(ctx); err != nil {
		return nil, err
	}

	if err := c.setStage(ctx, StageRunningPostTasks); err != nil {
		return nil, err
	}
	if err := c.runPostTasks(ctx); err != nil {
		return nil, err
	}

	// No more entries or tasks are allowed after this point.
	if err := c.setStage(ctx, StageWritingBackup); err != nil {
		return nil, err
	}
	return c.entries, nil
}

// Close releases the shared table locks held by the winning pass. Safe to
// call more than once and after failures.
func (c *Collector) Close() {
	c.releaseAllLocks()
}

func (c *Collector) setStage(ctx context.Context, stage Stage) error {
	c.logger.Debug().Str("stage", stage.String()).Msg("Entering stage")
	c.stage = stage

	peers := FilterHostIDs(c.settings.ClusterHostIDs, c.settings.ShardNum, c.settings.ReplicaNum)
	if len(peers) == 0 && c.settings.HostID != "" {
		peers = []string{c.settings.HostID}
	}
	if err := c.coordinator.SyncStage(ctx, c.settings.HostID, int(stage), peers, c.barrierTimeout()); err != nil {
		return err
	}
	return nil
}

// fail moves to the error stage and notifies peers. A secondary failure in
// the announcement must never mask the original error.
func (c *Collector) fail(cause error) {
	c.logger.Error().Str("stage", c.stage.String()).Err(cause).Msg("Collecting backup entries failed")
	c.stage = StageError
	func() {
		defer func() { _ = recover() }()
		c.coordinator.SyncStageError(c.settings.HostID, cause.Error())
	}()
	c.releaseAllLocks()
}

func (c *Collector) barrierTimeout() time.Duration {
	if c.settings.Timeout >= 0 {
		return c.settings.Timeout
	}
	return time.Duration(math.MaxInt64)
}

// collectDatabasesAndTables is the fixed-point retry loop. Each pass
// re-resolves the request elements against the catalog as of that instant
// and the loop exits only after two consecutive passes observed the same
// databases and tables.
func (c *Collector) collectDatabasesAndTables(ctx context.Context) error {
	useTimeout := c.settings.Timeout >= 0
	start := c.clk.Now()

	pass := 1
	for {
		c.clearPass()

		for _, el := range c.elements {
			var err error
			switch el.Type {
			case ElementTable:
				err = c.collectTableInfo(ctx, types.QualifiedName{Database: el.Database, Table: el.Table}, false, el.Partitions, true)
			case ElementTemporaryTable:
				err = c.collectTableInfo(ctx, types.QualifiedName{Table: el.Table}, true, el.Partitions, true)
			case ElementDatabase:
				err = c.collectDatabaseInfo(ctx, el.Database, exceptTableSet(el.ExceptTables), true)
			case ElementAll:
				err = c.collectAllDatabasesInfo(ctx, exceptDatabaseSet(el.ExceptDatabases), exceptTableSet(el.ExceptTables))
			}
			if err != nil {
				return err
			}
		}

		// A rename during the scan makes the collected info invalid;
		// the cross-pass comparison is what catches it.
		c.checkConsistency()

		elapsed := c.clk.Now().Sub(start)
		if !c.consistent && pass >= 2 {
			if useTimeout && elapsed > c.settings.Timeout {
				return errors.Newf(ErrCollectFailed, "couldn't collect tables and databases to make a backup (pass #%d, elapsed %s)", pass, elapsed)
			}
			c.logger.Warn().Int("pass", pass).Dur("elapsed", elapsed).Msg("Couldn't collect a consistent set of tables and databases, retrying")
		}
		pass++

		if c.consistent {
			break
		}
		select {
		case <-ctx.Done():
			return errors.New(ErrCollectFailed, "collecting tables and databases was cancelled", ctx.Err())
		default:
		}
	}

	c.logger.Info().Int("databases", len(c.databaseInfos)).Int("tables", len(c.tableInfos)).Msg("Collected databases and tables to backup")
	return nil
}

func (c *Collector) clearPass() {
	c.releaseAllLocks()
	c.databaseInfos = make(map[string]*databaseInfo)
	c.tableInfos = make(map[TargetKey]*tableInfo)
	c.consistent = true
}

func (c *Collector) releaseAllLocks() {
	for _, info := range c.tableInfos {
		if info.lock != nil {
			info.lock.Release()
			info.lock = nil
		}
	}
}

// collectTableInfo gathers handles, a shared lock and the definition of one
// table. With mustExist set, every failure is fatal; otherwise a vanished
// or dropped-concurrently table only counts as drift.
func (c *Collector) collectTableInfo(ctx context.Context, name types.QualifiedName, temporary bool, partitions []string, mustExist bool) error {
	key := TargetKey{Name: name, Temporary: temporary}

	var (
		db   catalog.Database
		tbl  catalog.Table
		lock catalog.TableLock
		def  *types.TableDefinition
		err  error
	)

	if mustExist {
		if temporary {
			db, tbl, err = c.catalog.ResolveTemporaryTable(ctx, name.Table)
		} else {
			db, tbl, err = c.catalog.ResolveTable(ctx, name)
		}
		if err != nil {
			return err
		}
		if lock, err = tbl.LockShared(ctx, c.lockOwner, c.settings.LockAcquireTimeout); err != nil {
			return err
		}
		if def, err = tbl.Definition(ctx); err != nil {
			lock.Release()
			return err
		}
	} else {
		var ok bool
		if temporary {
			db, tbl, ok = c.catalog.TryResolveTemporaryTable(ctx, name.Table)
		} else {
			db, tbl, ok = c.catalog.TryResolveTable(ctx, name)
		}
		if ok {
			lock, err = tbl.LockShared(ctx, c.lockOwner, c.settings.LockAcquireTimeout)
			if err != nil {
				if !errors.HasCode(err, catalog.ErrDroppedConcurrently) {
					return err
				}
				lock = nil
			} else {
				def, err = tbl.Definition(ctx)
				if err != nil {
					lock.Release()
					lock = nil
					if !errors.HasCode(err, catalog.ErrDroppedConcurrently) {
						return err
					}
				}
			}
		}
		if def == nil {
			// The table disappeared. That is drift only if this pass
			// already saw it.
			if _, seen := c.tableInfos[key]; seen {
				c.consistent = false
			}
			return nil
		}
	}

	var dataPath string
	if temporary {
		dataPath = c.pathManager.TemporaryTableDataPath(c.rootPath, c.renaming.NewTemporaryTableName(name.Table))
	} else {
		dataPath = c.pathManager.TableDataPath(c.rootPath, c.renaming.NewTableName(name))
	}

	if def.Name != name.Table || def.Temporary != temporary || def.Database != name.Database {
		// Table was renamed recently.
		lock.Release()
		c.logger.Debug().Str("table", name.FullName()).Msg("Table definition no longer matches its name, pass is inconsistent")
		c.consistent = false
		return nil
	}

	if existing, seen := c.tableInfos[key]; seen {
		if existing.database != db || existing.table != tbl {
			// Dropped and recreated under the same name.
			lock.Release()
			c.consistent = false
			return nil
		}
		// Collected twice by overlapping elements: keep the newer state
		// and merge partition restrictions.
		existing.lock.Release()
		existing.lock = lock
		existing.database = db
		existing.table = tbl
		existing.definition = def
		existing.dataPath = dataPath
		if partitions != nil {
			existing.partitions = append(existing.partitions, partitions...)
		}
		return nil
	}

	info := &tableInfo{
		database:   db,
		table:      tbl,
		lock:       lock,
		definition: def,
		dataPath:   dataPath,
	}
	if partitions != nil {
		info.partitions = append(info.partitions, partitions...)
	}
	c.tableInfos[key] = info
	return nil
}

// collectDatabaseInfo gathers one database's handle and definition, then
// enumerates and collects its tables best-effort.
func (c *Collector) collectDatabaseInfo(ctx context.Context, name string, exceptTables map[types.QualifiedName]struct{}, mustExist bool) error {
	var (
		db  catalog.Database
		def *types.DatabaseDefinition
		err error
	)

	if mustExist {
		if db, err = c.catalog.ResolveDatabase(ctx, name); err != nil {
			return err
		}
		if def, err = db.Definition(ctx); err != nil {
			return err
		}
	} else {
		var ok bool
		if db, ok = c.catalog.GetDatabase(ctx, name); !ok {
			if _, seen := c.databaseInfos[name]; seen {
				c.consistent = false
			}
			return nil
		}
		if def, err = db.Definition(ctx); err != nil {
			if !errors.HasCode(err, catalog.ErrDroppedConcurrently) {
				return err
			}
			if _, seen := c.databaseInfos[name]; seen {
				c.consistent = false
			}
			return nil
		}
	}

	if def.Name != name {
		// Database was renamed recently.
		c.logger.Debug().Str("database", name).Msg("Database definition no longer matches its name, pass is inconsistent")
		c.consistent = false
		return nil
	}

	if existing, seen := c.databaseInfos[name]; seen && existing.database != db {
		c.consistent = false
		return nil
	}
	c.databaseInfos[name] = &databaseInfo{database: db, definition: def}

	tables, err := db.ListTables(ctx)
	if err != nil {
		if errors.HasCode(err, catalog.ErrDroppedConcurrently) {
			c.consistent = false
			return nil
		}
		return err
	}
	for _, table := range tables {
		qualified := types.QualifiedName{Database: name, Table: table}
		if _, excluded := exceptTables[qualified]; excluded {
			continue
		}
		if err := c.collectTableInfo(ctx, qualified, false, nil, false); err != nil {
			return err
		}
		if !c.consistent {
			return nil
		}
	}
	return nil
}

func (c *Collector) collectAllDatabasesInfo(ctx context.Context, exceptDatabases map[string]struct{}, exceptTables map[types.QualifiedName]struct{}) error {
	names, err := c.catalog.ListDatabases(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, excluded := exceptDatabases[name]; excluded {
			continue
		}
		if err := c.collectDatabaseInfo(ctx, name, exceptTables, false); err != nil {
			return err
		}
		if !c.consistent {
			return nil
		}
	}
	return nil
}

// checkConsistency cross-checks the pass and compares it with the previous
// one. The first pass can never be consistent: the previous sets are unset,
// which is what enforces the two-pass minimum.
func (c *Collector) checkConsistency() {
	if !c.consistent {
		return
	}

	// A table's owning database must be the same handle the database scan
	// found independently.
	for key, info := range c.tableInfos {
		if dbInfo, ok := c.databaseInfos[key.Name.Database]; ok && dbInfo.database != info.database {
			c.consistent = false
			return
		}
	}

	databaseNames := make(map[string]struct{}, len(c.databaseInfos))
	for name := range c.databaseInfos {
		databaseNames[name] = struct{}{}
	}
	tableKeys := make(map[TargetKey]struct{}, len(c.tableInfos))
	for key := range c.tableInfos {
		tableKeys[key] = struct{}{}
	}

	if !c.havePrevious || !equalStringSets(c.previousDatabaseNames, databaseNames) || !equalKeySets(c.previousTableKeys, tableKeys) {
		c.previousDatabaseNames = databaseNames
		c.previousTableKeys = tableKeys
		c.havePrevious = true
		c.consistent = false
	}
}

func equalStringSets(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func equalKeySets(a, b map[TargetKey]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// makeEntriesForDatabaseDefinitions registers one definition entry per
// collected database, renamed and serialized.
func (c *Collector) makeEntriesForDatabaseDefinitions() error {
	names := make([]string, 0, len(c.databaseInfos))
	for name := range c.databaseInfos {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := c.databaseInfos[name]
		c.logger.Debug().Str("database", name).Msg("Adding definition of database")

		def := c.renaming.RewriteDatabaseDefinition(info.definition)
		data, err := def.Serialize()
		if err != nil {
			return err
		}
		entryPath := c.pathManager.DatabaseMetadataPath(c.rootPath, def.Name)
		if err := c.AddEntry(entryPath, types.NewMemoryProducer(data)); err != nil {
			return err
		}
	}
	return nil
}

// makeEntriesForTableDefinitions registers one definition entry per
// collected table, renamed and serialized.
func (c *Collector) makeEntriesForTableDefinitions() error {
	for _, key := range c.sortedTableKeys() {
		info := c.tableInfos[key]
		c.logger.Debug().Str("table", key.Name.FullName()).Bool("temporary", key.Temporary).Msg("Adding definition of table")

		def := c.renaming.RewriteTableDefinition(info.definition)
		data, err := def.Serialize()
		if err != nil {
			return err
		}

		var entryPath string
		if key.Temporary {
			entryPath = c.pathManager.TemporaryTableMetadataPath(c.rootPath, def.Name)
		} else {
			entryPath = c.pathManager.TableMetadataPath(c.rootPath, types.QualifiedName{Database: def.Database, Table: def.Name})
		}
		if err := c.AddEntry(entryPath, types.NewMemoryProducer(data)); err != nil {
			return err
		}
	}
	return nil
}

// makeEntriesForTableData delegates data extraction to each table's storage
// object, handing it this collector as the registration sink.
func (c *Collector) makeEntriesForTableData(ctx context.Context) error {
	if c.settings.StructureOnly {
		return nil
	}
	for _, key := range c.sortedTableKeys() {
		info := c.tableInfos[key]
		c.logger.Debug().Str("table", key.Name.FullName()).Bool("temporary", key.Temporary).Msg("Adding data of table")
		if err := info.table.BackupData(ctx, c, info.dataPath, info.partitions); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) sortedTableKeys() []TargetKey {
	keys := make([]TargetKey, 0, len(c.tableInfos))
	for key := range c.tableInfos {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// AddEntry registers one backup entry. Rejected once the writing stage is
// reached.
func (c *Collector) AddEntry(path string, producer types.Producer) error {
	if c.stage == StageWritingBackup {
		return errors.New(ErrRegistrationClosed, "adding backup entries is not allowed", nil).AddContext("path", path)
	}
	c.entries = append(c.entries, types.Entry{Path: path, Producer: producer})
	return nil
}

// AddEntries registers several backup entries. Rejected once the writing
// stage is reached.
func (c *Collector) AddEntries(entries []types.Entry) error {
	if c.stage == StageWritingBackup {
		return errors.New(ErrRegistrationClosed, "adding backup entries is not allowed", nil)
	}
	c.entries = append(c.entries, entries...)
	return nil
}

// AddPostTask registers deferred work to run after all definition and data
// entries are in. Rejected once the writing stage is reached.
func (c *Collector) AddPostTask(task types.PostTask) error {
	if c.stage == StageWritingBackup {
		return errors.New(ErrRegistrationClosed, "adding post tasks is not allowed", nil)
	}
	c.postTasks = append(c.postTasks, task)
	return nil
}

// runPostTasks drains the task queue in FIFO order. Tasks may enqueue
// further tasks while draining.
func (c *Collector) runPostTasks(ctx context.Context) error {
	for len(c.postTasks) > 0 {
		task := c.postTasks[0]
		c.postTasks = c.postTasks[1:]
		if err := task(ctx); err != nil {
			return errors.New(ErrPostTaskFailed, "post-collecting task failed", err)
		}
	}
	return nil
}
