// Package password hashes and verifies account passwords with argon2id,
// encoded in the PHC string format so parameters travel with the hash.
package password
