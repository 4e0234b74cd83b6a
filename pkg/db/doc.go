// Package db provides database connection utilities.
//
// Policy management talks straight to the project's Postgres instance via
// GORM. The embedded migrations create a minimal local storage schema
// (storage.buckets, storage.objects, RLS enabled) so the policy workflow
// can be exercised against a bare Postgres without a hosted project.
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string (required)
//   - STORAGE_LOG_LEVEL: Set to "debug" for SQL query logging
package db
