// Package token decodes the payload segment of platform bearer tokens.
//
// Token Format:
//
//   - Three dot-delimited base64url segments: header.payload.signature
//   - Only the payload segment is interpreted, as a JSON object
//   - Claims used: exp (epoch seconds), access_level, email, user_id, timestamp
//
// Trust:
//
//   - Signatures are never verified here
//   - A decoded payload is a client-side hint (e.g. redirect before the
//     server rejects a call); the server's 401 remains the authority
package token
