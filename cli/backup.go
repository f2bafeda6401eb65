package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gear6io/glacier/pkg/errors"
	"github.com/gear6io/glacier/server/backup"
	"github.com/gear6io/glacier/server/catalog/memory"
	"github.com/gear6io/glacier/server/config"
	"github.com/gear6io/glacier/server/coordination"
	"github.com/gear6io/glacier/server/types"
	"github.com/gear6io/glacier/server/writer"
	"github.com/gear6io/glacier/utils"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Collect a backup snapshot and write it to the destination",
	Long: `Collect a backup snapshot from a catalog manifest and write it out.

Request elements select what goes into the backup:
  --all                 every database
  --databases db1,db2   whole databases
  --tables db.t1,db.t2  single tables

Renames use the form old=new, e.g. --tables "shop.orders=store.receipts".`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().String("manifest", "", "catalog manifest to back up (required)")
	backupCmd.Flags().String("dest", "", "destination directory (overrides config)")
	backupCmd.Flags().Bool("all", false, "back up all databases")
	backupCmd.Flags().StringSlice("databases", nil, "databases to back up")
	backupCmd.Flags().StringSlice("tables", nil, "tables to back up (db.table)")
	backupCmd.Flags().StringSlice("temporary-tables", nil, "temporary tables to back up")
	backupCmd.Flags().StringSlice("except-databases", nil, "databases to skip with --all")
	backupCmd.Flags().StringSlice("except-tables", nil, "tables to skip (db.table)")
	backupCmd.Flags().Bool("structure-only", false, "collect definitions only, no data")
	backupCmd.Flags().String("backup-id", "", "shared backup id for multi-host coordination")
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := config.SetupLogger(cfg)
	if err != nil {
		return err
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath == "" {
		return errors.New(ErrInvalidArguments, "--manifest is required", nil)
	}
	manifest, err := memory.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	cat, err := memory.CatalogFromManifest(manifest)
	if err != nil {
		return err
	}

	elements, err := parseElements(cmd)
	if err != nil {
		return err
	}

	settings, err := buildSettings(cmd, cfg)
	if err != nil {
		return err
	}

	coordinator, err := buildCoordinator(cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer coordinator.Shutdown(cmd.Context())

	collector, err := backup.NewCollector(backup.Config{
		Elements:    elements,
		Settings:    settings,
		Catalog:     cat,
		Coordinator: coordinator,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer collector.Close()

	entries, err := collector.Run(cmd.Context())
	if err != nil {
		pterm.Error.Printf("Backup failed: %v\n", err)
		return errors.New(ErrBackupFailed, "collecting backup entries failed", err)
	}

	dest, err := buildWriter(cmd, cfg, logger)
	if err != nil {
		return err
	}
	if err := dest.Write(cmd.Context(), entries); err != nil {
		pterm.Error.Printf("Backup failed: %v\n", err)
		return errors.New(ErrBackupFailed, "writing backup entries failed", err)
	}

	printSummary(collector.BackupID(), entries)
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.LoadDefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

// parseElements turns the selection flags into request elements.
func parseElements(cmd *cobra.Command) ([]backup.Element, error) {
	var elements []backup.Element

	exceptTables, err := parseQualifiedNames(mustStringSlice(cmd, "except-tables"))
	if err != nil {
		return nil, err
	}
	exceptDatabases := mustStringSlice(cmd, "except-databases")

	if all, _ := cmd.Flags().GetBool("all"); all {
		elements = append(elements, backup.NewAllElement(exceptDatabases, exceptTables))
	}

	for _, spec := range mustStringSlice(cmd, "databases") {
		from, to := splitRename(spec)
		el := backup.NewDatabaseElement(from, exceptTables...)
		el.NewDatabase = to
		elements = append(elements, el)
	}

	for _, spec := range mustStringSlice(cmd, "tables") {
		fromSpec, toSpec := splitRename(spec)
		from, err := parseQualifiedName(fromSpec)
		if err != nil {
			return nil, err
		}
		el := backup.NewTableElement(from.Database, from.Table)
		if toSpec != "" {
			to, err := parseQualifiedName(toSpec)
			if err != nil {
				return nil, err
			}
			el.NewDatabase = to.Database
			el.NewTable = to.Table
		}
		elements = append(elements, el)
	}

	for _, spec := range mustStringSlice(cmd, "temporary-tables") {
		from, to := splitRename(spec)
		el := backup.NewTemporaryTableElement(from)
		el.NewTable = to
		elements = append(elements, el)
	}

	if len(elements) == 0 {
		return nil, errors.New(ErrInvalidArguments, "nothing selected: use --all, --databases or --tables", nil)
	}
	return elements, nil
}

func buildSettings(cmd *cobra.Command, cfg *config.Config) (backup.Settings, error) {
	timeout, err := cfg.Backup.GetTimeout()
	if err != nil {
		return backup.Settings{}, err
	}
	lockTimeout, err := cfg.Backup.GetLockTimeout()
	if err != nil {
		return backup.Settings{}, err
	}
	structureOnly, _ := cmd.Flags().GetBool("structure-only")
	return backup.Settings{
		HostID:             cfg.Backup.HostID,
		ClusterHostIDs:     cfg.Backup.Cluster,
		StructureOnly:      structureOnly,
		Timeout:            timeout,
		LockAcquireTimeout: lockTimeout,
	}, nil
}

func buildCoordinator(cmd *cobra.Command, cfg *config.Config, logger zerolog.Logger) (coordination.StageCoordinator, error) {
	if cfg.Coordination.StorePath == "" {
		return coordination.NewMemoryCoordinator(logger), nil
	}
	backupID, _ := cmd.Flags().GetString("backup-id")
	if backupID == "" {
		backupID = utils.GenerateULIDString()
		pterm.Info.Printf("Coordination id: %s (pass --backup-id to the other hosts)\n", backupID)
	}
	return coordination.NewStore(cfg.Coordination.StorePath, backupID, logger)
}

func buildWriter(cmd *cobra.Command, cfg *config.Config, logger zerolog.Logger) (writer.Writer, error) {
	if dest, _ := cmd.Flags().GetString("dest"); dest != "" {
		return writer.NewFilesystemWriter(dest, logger)
	}
	switch cfg.Destination.Type {
	case config.DestinationS3:
		return writer.NewMinioWriter(writer.MinioConfig{
			Endpoint:  cfg.Destination.S3.Endpoint,
			Bucket:    cfg.Destination.S3.Bucket,
			Prefix:    cfg.Destination.S3.Prefix,
			AccessKey: cfg.Destination.S3.AccessKey,
			SecretKey: cfg.Destination.S3.SecretKey,
			UseSSL:    cfg.Destination.S3.UseSSL,
		}, logger)
	default:
		return writer.NewFilesystemWriter(cfg.Destination.Path, logger)
	}
}

func printSummary(backupID string, entries []types.Entry) {
	var totalBytes int64
	definitions := 0
	for _, e := range entries {
		totalBytes += e.Producer.Size()
		if strings.HasSuffix(e.Path, ".def") {
			definitions++
		}
	}
	pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Backup", "Entries", "Definitions", "Data files", "Bytes"},
		{
			backupID,
			strconv.Itoa(len(entries)),
			strconv.Itoa(definitions),
			strconv.Itoa(len(entries) - definitions),
			fmt.Sprintf("%d", totalBytes),
		},
	}).Render()
	pterm.Success.Printf("Backup %s complete: %d entries\n", backupID, len(entries))
}

func splitRename(spec string) (from, to string) {
	if i := strings.Index(spec, "="); i >= 0 {
		return spec[:i], spec[i+1:]
	}
	return spec, ""
}

func parseQualifiedName(spec string) (types.QualifiedName, error) {
	parts := strings.SplitN(spec, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return types.QualifiedName{}, errors.New(ErrInvalidArguments, "table must be qualified as db.table", nil).AddContext("table", spec)
	}
	return types.QualifiedName{Database: parts[0], Table: parts[1]}, nil
}

func parseQualifiedNames(specs []string) ([]types.QualifiedName, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	names := make([]types.QualifiedName, 0, len(specs))
	for _, spec := range specs {
		name, err := parseQualifiedName(spec)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func mustStringSlice(cmd *cobra.Command, name string) []string {
	values, _ := cmd.Flags().GetStringSlice(name)
	return values
}
