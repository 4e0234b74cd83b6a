// Package main provides storagectl, a CLI for provisioning and testing
// Supabase Storage resumable uploads.
//
// storagectl automates the setup a resumable upload test run needs: a
// test bucket, temporary permissive row level security policies on the
// storage tables, and a sanity check that the storage API and its TUS
// endpoint answer.
//
// # Architecture
//
// The tool is organized into several packages:
//
//   - pkg/storage: Storage API client (buckets, objects, resumable uploads)
//   - pkg/policy: Temporary test policy templates and an idempotent applier
//   - pkg/keys: Project API key (JWT) inspection
//   - pkg/config: Configuration management
//   - pkg/db: Database connection and schema migrations
//   - pkg/emulator: In-memory storage API emulator for local testing
//   - pkg/s3compat: S3 gateway interop check
//
// # Quick Start
//
//	# Point at the project
//	export SUPABASE_URL=https://myproject.supabase.co
//	export SUPABASE_KEY=<anon key>
//	export TEST_BUCKET=upload-tests
//
//	# Create the bucket and open it up for the test run
//	storagectl bucket create
//	storagectl policy apply
//
//	# Verify everything answers, then upload
//	storagectl check
//	storagectl upload ./video.mp4
//
//	# Clean up afterwards
//	storagectl policy remove
//	storagectl bucket delete --force
//
// # Environment Variables
//
//   - SUPABASE_URL: Project base URL
//   - SUPABASE_KEY: Project API key (anon key for policy testing)
//   - TEST_BUCKET: Bucket used by the upload commands and test suites
//   - DATABASE_URL: PostgreSQL connection string (policy and db commands)
//   - STORAGE_LOG_LEVEL: Set to debug for verbose output
package main
