package indexes

import (
	"strings"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// Definition represents an index name and its creation SQL.
type Definition struct {
	Name string
	SQL  string
}

// expectedDefinitions is the single source of truth for performance indexes.
var expectedDefinitions = []Definition{
	// Purge sweep filters on classification and the last-activity time
	{Name: "idx_log_purge", SQL: `CREATE INDEX IF NOT EXISTS idx_log_purge ON ip_log(classification, updated_at)`},

	// Log browsing orders by last activity, newest first
	{Name: "idx_log_updated", SQL: `CREATE INDEX IF NOT EXISTS idx_log_updated ON ip_log(updated_at DESC)`},

	// Dashboard search filters on the dotted address
	{Name: "idx_log_ip", SQL: `CREATE INDEX IF NOT EXISTS idx_log_ip ON ip_log(ip_address)`},
}

// legacyIndexes represent deprecated/older index names that should be dropped when reconciling.
var legacyIndexes = []string{
	"idx_ip_log_classification",
	"idx_ip_log_updated_at",
	"idx_classification",
	"idx_updated_at",
}

// Ensure reconciles expected indexes against SQLite, dropping obsolete ones and creating missing ones.
func Ensure(db *gorm.DB, logger *pterm.Logger) (created int, dropped int, err error) {
	existingIndexes, err := fetchExistingIndexes(db)
	if err != nil {
		return 0, 0, err
	}

	existingSet := make(map[string]struct{}, len(existingIndexes))
	for _, name := range existingIndexes {
		existingSet[name] = struct{}{}
	}

	expectedSet := make(map[string]Definition, len(expectedDefinitions))
	for _, def := range expectedDefinitions {
		expectedSet[def.Name] = def
	}

	var unexpected []string
	for name := range existingSet {
		if _, ok := expectedSet[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}

	var missing []Definition
	for _, def := range expectedDefinitions {
		if _, ok := existingSet[def.Name]; !ok {
			missing = append(missing, def)
		}
	}

	hasMismatch := len(unexpected) > 0 || len(missing) > 0
	if hasMismatch {
		namesToDrop := uniqueNames(append(legacyIndexes, unexpected...))
		for _, name := range namesToDrop {
			if err := db.Exec("DROP INDEX IF EXISTS " + name).Error; err != nil {
				logger.Warn("Failed to drop index", logger.Args("index", name, "error", err))
				continue
			}
			dropped++
		}
	}

	for _, def := range expectedDefinitions {
		if err := db.Exec(def.SQL).Error; err != nil {
			logger.Warn("Failed to create index", logger.Args("index", def.Name, "error", err))
			return created, dropped, err
		}
		if _, ok := existingSet[def.Name]; !ok {
			created++
		}
	}

	return created, dropped, nil
}

func fetchExistingIndexes(db *gorm.DB) ([]string, error) {
	var names []string
	rows, err := db.Raw(`SELECT name FROM sqlite_master WHERE type='index' AND tbl_name='ip_log' AND name NOT LIKE 'sqlite_%'`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}
