// Package emulator is an in-memory storage service for tests and local
// development.
//
// It serves the subset of the Storage API that pkg/storage speaks (bucket
// CRUD, object upload/download/list/move/copy/remove, signed URLs, public
// objects) plus the TUS resumable upload endpoint with offset bookkeeping,
// deferred lengths, and Upload-Expires.
//
// Mount it in an httptest.Server for hermetic client tests:
//
//	srv := httptest.NewServer(emulator.New(nil).Router())
//	defer srv.Close()
//	client, _ := storage.New(srv.URL, "test-key")
//
// Or run it standalone via "storagectl emulator".
package emulator
