// Package storage selects the attendance store of the configured backend.
package storage

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/storage/database"
	inmemdb "github.com/trezcool/rollcall/storage/inmem"
	"github.com/trezcool/rollcall/storage/sheetstore"
	"github.com/trezcool/rollcall/storage/xlsxstore"
)

// Closer releases the resources held by a store.
type Closer func() error

func noop() error { return nil }

// Open opens the attendance store of conf.Storage.Backend.
func Open(ctx context.Context, conf *core.Config) (attendance.Store, Closer, error) {
	switch conf.Storage.Backend {
	case core.BackendFile:
		return xlsxstore.New(conf.Storage.Dir), noop, nil
	case core.BackendMemory:
		return inmemdb.New(), noop, nil
	case core.BackendSheets:
		var opts []option.ClientOption
		if conf.Sheets.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(conf.Sheets.CredentialsFile))
		}
		store, err := sheetstore.New(ctx, conf.Sheets.SpreadsheetID, opts...)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case core.BackendPostgres:
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return database.NewStore(db), db.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}
