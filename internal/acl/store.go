// internal/acl/store.go
//
// Small query helpers for site-scoped Role-Based Access Control.
//
// Context
// -------
// Dashboard users are granted roles per site:
//
//	role        (id PK, name, enabled)
//	role_acl    (role_id, component, action, permitted)
//	user_role   (user_id, role_id, site_slug)
//
// The editor and panel handlers need fast answers to two questions:
//  1. Which *role names* does user X have on site S?   → `UserRoles()`
//  2. Is role R permitted for component/action?         → `RoleAllowed()`
//
// These helpers accept a *sql.DB and perform simple parameterised queries.
// Checker wraps both for callers that only want a yes or no.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package acl

import (
	"context"
	"database/sql"
	"errors"
)

// UserRoles returns the role *names* bound to userID on site.  Disabled
// roles are filtered out.
func UserRoles(ctx context.Context, db *sql.DB, userID int64, site string) ([]string, error) {
	const q = `SELECT r.name
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.user_id = ? AND ur.site_slug = ? AND r.enabled = TRUE`

	rows, err := db.QueryContext(ctx, q, userID, site)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]string, 0, 4)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

// RoleAllowed reports whether *any* of the candidate roles is permitted for
// the given component + action.  It executes one query using IN (? … ?).
//
// Empty roles slice returns false, nil.
func RoleAllowed(ctx context.Context, db *sql.DB, roles []string, component, action string) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	placeholders := make([]byte, 0, len(roles)*2)
	args := make([]any, 0, len(roles)+2)
	for i, r := range roles {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, r)
	}
	args = append(args, component, action)

	q := `SELECT 1
            FROM role_acl ra
            JOIN role r ON r.id = ra.role_id
           WHERE r.name IN (` + string(placeholders) + `)
             AND ra.component = ?
             AND ra.action   = ?
             AND ra.permitted = TRUE
           LIMIT 1` // early exit once we find a hit

	var dummy int
	err := db.QueryRowContext(ctx, q, args...).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Checker answers permission questions against one database.
type Checker struct {
	DB *sql.DB
}

// Allowed combines UserRoles and RoleAllowed.
func (c Checker) Allowed(ctx context.Context, userID int64, site, component, action string) (bool, error) {
	roles, err := UserRoles(ctx, c.DB, userID, site)
	if err != nil {
		return false, err
	}
	return RoleAllowed(ctx, c.DB, roles, component, action)
}
