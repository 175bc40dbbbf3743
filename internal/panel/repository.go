// internal/panel/repository.go
//
// `editor_panel` table access.
//
// Schema reference
//
//	CREATE TABLE editor_panel (
//	    site_slug   VARCHAR(100) NOT NULL,
//	    panel       VARCHAR(32)  NOT NULL,
//	    data        JSON         NOT NULL,
//	    version     INT UNSIGNED NOT NULL DEFAULT 1,
//	    updated_by  BIGINT       NOT NULL,
//	    updated_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    PRIMARY KEY (site_slug, panel)
//	);
//
// Notes
// -----
//   - Column list matches the fields in `Record`; update both together.
//   - Version 0 means "no row yet".  The first write inserts version 1.
package panel

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitebuilder/internal/database"
)

// ErrConflict means the row changed since it was loaded.
var ErrConflict = errors.New("panel: changed by someone else, reload and retry")

// Record mirrors one row in `editor_panel`.
type Record struct {
	Site      string    `db:"site_slug"`
	Panel     string    `db:"panel"`
	Data      []byte    `db:"data"`
	Version   int       `db:"version"`
	UpdatedBy int64     `db:"updated_by"`
	UpdatedAt time.Time `db:"updated_at"`
}

// getRecord returns (nil, nil) when no row exists.
func getRecord(ctx context.Context, db *sqlx.DB, site string, kind Kind) (*Record, error) {
	const q = `
        SELECT site_slug, panel, data, version, updated_by, updated_at
        FROM   editor_panel
        WHERE  site_slug = ?
          AND  panel     = ?
        LIMIT  1`
	var rec Record
	err := db.GetContext(ctx, &rec, q, site, string(kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// putRecord writes rec if the stored version still equals expected.
func putRecord(ctx context.Context, db *sqlx.DB, rec *Record, expected int) error {
	if expected == 0 {
		const ins = `
            INSERT INTO editor_panel (site_slug, panel, data, version, updated_by, updated_at)
            VALUES (?, ?, ?, 1, ?, ?)`
		_, err := db.ExecContext(ctx, ins, rec.Site, rec.Panel, rec.Data, rec.UpdatedBy, rec.UpdatedAt)
		if database.IsDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}

	const upd = `
        UPDATE editor_panel
        SET    data = ?, version = version + 1, updated_by = ?, updated_at = ?
        WHERE  site_slug = ?
          AND  panel     = ?
          AND  version   = ?`
	res, err := db.ExecContext(ctx, upd, rec.Data, rec.UpdatedBy, rec.UpdatedAt, rec.Site, rec.Panel, expected)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
