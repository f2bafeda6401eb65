package backup

// Stage is one phase of a backup collection operation. Stages are strictly
// ordered; the only backward-looking transition is into StageError, which is
// absorbing. Every cooperating host must reach a stage before any of them
// proceeds past it.
type Stage int

const (
	// StagePreparing computes the root path and the renaming map. No
	// catalog access happens yet.
	StagePreparing Stage = iota

	// StageFindingTables runs the fixed-point retry loop until the
	// collected set of databases and tables is consistent.
	StageFindingTables

	// StageExtractingData asks every collected table for its data entries.
	StageExtractingData

	// StageRunningPostTasks drains the deferred task queue.
	StageRunningPostTasks

	// StageWritingBackup is the terminal success stage. No further entries
	// or tasks may be registered.
	StageWritingBackup

	// StageError is the absorbing failure stage.
	StageError
)

func (s Stage) String() string {
	switch s {
	case StagePreparing:
		return "Preparing"
	case StageFindingTables:
		return "Finding tables"
	case StageExtractingData:
		return "Extracting data from tables"
	case StageRunningPostTasks:
		return "Running post tasks"
	case StageWritingBackup:
		return "Writing backup"
	case StageError:
		return "Error"
	}
	return "Unknown"
}
