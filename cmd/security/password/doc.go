// Package password provides password hashing and policy validation for Gatehouse.
//
// It implements Argon2id hashing using a PHC-style encoded string format and includes:
//   - Configurable Argon2id parameters (via environment variables)
//   - A composition policy (length, upper/lower case, digit, special character)
//     that reports one message per violated rule
//   - Strict hash decoding and verification with anti-DoS bounds
//
// Security notes:
// - Hash strings are treated as untrusted input during Verify and are validated accordingly.
// - Verification refuses hashes with parameters that exceed reasonable bounds.
// - Plaintext passwords are never persisted or logged by this package.
package password
