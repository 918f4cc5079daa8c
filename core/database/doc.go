// Package database opens the optional SQL connection used to keep the run
// history of the mirror.
//
// It wraps GORM with the MySQL and SQLite dialectors. A blank driver means no
// database is configured; the mirror then runs without history and relies
// on the per-run report alone.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("Run history disabled", zap.Error(err))
//	}
package database
