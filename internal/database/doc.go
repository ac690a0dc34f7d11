// Package database opens the PostgreSQL pool that backs the durable trade history.
//
// The pool is only created when store.backend is "postgres"; the in-memory
// backend needs no database at all.
package database
