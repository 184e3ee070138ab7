// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// retrying startup, goose schema migrations, a readiness probe, and error
// helpers for translating driver errors (no-rows, unique violations) into
// application-level decisions.
package pg
