// Package all wires all built-in storage backends into the storage factory.
//
// Importing it (usually as a blank import from a main package) runs each
// backend's init, which registers its factory and DDL bootstrapper:
//
//   - "postgres" (heartetl/internal/storage/postgres)
//   - "mysql"    (heartetl/internal/storage/mysql)
//   - "mssql"    (heartetl/internal/storage/mssql)
//   - "sqlite"   (heartetl/internal/storage/sqlite)
//
// Callers then stay backend-agnostic:
//
//	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Load.Kind, DSN: dsn, Table: cfg.Load.DBTable})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
//	if err := storage.ReplaceTable(ctx, cfg.Load.Kind, repo, def); err != nil {
//	    // handle DDL error
//	}
package all

import (
	_ "heartetl/internal/storage/mssql"
	_ "heartetl/internal/storage/mysql"
	_ "heartetl/internal/storage/postgres"
	_ "heartetl/internal/storage/sqlite"
)
