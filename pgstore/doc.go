// Package pgstore implements the openleads AccountProvider over PostgreSQL
// with pgx. It only reads and writes the columns the auth core needs; the
// surrounding CRUD system owns the schema.
package pgstore
