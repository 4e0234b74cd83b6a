// Package config loads the environment contract shared by storagectl and
// the test suites.
//
// Values are read in ascending precedence from a .env file, an optional
// storage.yml config file, and the process environment:
//
//   - SUPABASE_URL: project base URL (required)
//   - SUPABASE_KEY: project API key (required)
//   - TEST_BUCKET: bucket used by the resumable upload tests
//   - DATABASE_URL: Postgres connection string for policy management
//   - STORAGE_LOG_LEVEL: "debug" for verbose output
//
// Each attribute remembers its source (default, file, env) so
// "storagectl configuration show" can report where a value came from.
package config
