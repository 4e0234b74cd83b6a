// Package storage is a client for the Supabase Storage HTTP API.
//
// A Client manages buckets and hands out bucket-scoped handles for object
// operations:
//
//	client, err := storage.New(url+"/storage/v1", apiKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	bucket := client.From("avatars")
//	err = bucket.Upload(ctx, "folder/avatar.png", file, &storage.FileOptions{
//	    ContentType: "image/png",
//	})
//
// # Resumable uploads
//
// Client.Resumable implements the client side of the service's TUS
// resumable upload endpoint. An upload link is created once, then Upload
// transfers the file in chunks, querying the server for the current offset
// before each chunk so interrupted transfers continue where they stopped:
//
//	err = client.Resumable.CreateUniqueLink(ctx, storage.CreateLinkOptions{
//	    Bucket:   "avatars",
//	    FileName: "avatar.png",
//	})
//	err = client.Resumable.Upload(ctx, "avatar.png", storage.UploadOptions{})
//
// # Errors
//
// API failures are returned as *Error carrying the HTTP status and the
// service's decoded error body. Use IsNotFound to branch on missing
// buckets or objects.
package storage
