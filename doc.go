// Package filegate provides an upload gateway over a key-addressed object
// store with byte-range streaming and per-object usage accounting.
//
// Uploads are validated by sniffing the true media type from the leading
// bytes of the content, assigned a collision-resistant storage key of the
// form {date}/{category}/{token}-{name}, and written to the object store
// with the original filename preserved as metadata. Downloads and streams
// satisfy single-range HTTP Range requests byte-exactly against the store's
// partial reads, and every served request attributes exactly one accounting
// event (download count, bandwidth, last access) to its key.
//
// # Key Components
//
//   - Service: orchestrates upload, ranged delivery, delete and presigned URLs
//   - ObjectStore: interface for blob storage (MinIO implementation in s3/)
//   - UsageLedger: interface for usage counters (PostgreSQL, SQLite backends)
//   - ResolveRange: Range header parsing with an explicit reject policy for
//     multi-range and malformed specs
//
// The object store and the ledger live in separate consistency domains by
// design: the ledger reflects historical usage and is never failed or rolled
// back by the data path.
//
// See the http package for the REST surface and the database packages for
// the ledger backends.
package filegate
