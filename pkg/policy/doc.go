// Package policy manages the permissive row-level-security policies a
// storage test environment needs.
//
// The hosted storage service enforces Postgres RLS on storage.objects and
// storage.buckets; a fresh project denies everything, so the resumable
// upload test suite cannot create or list objects until access is granted.
// This package carries the two blanket CREATE POLICY statements as typed
// templates and applies or removes them idempotently over a direct
// database connection.
//
// The policies grant all operations to the public role unconditionally.
// They are for disposable test projects only and should be removed as soon
// as the test run is over ("storagectl policy remove").
package policy
