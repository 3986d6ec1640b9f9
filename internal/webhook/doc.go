// Package webhook implements the inbound HTTP endpoint for WhatsApp provider
// events, with optional HMAC-SHA256 signature verification.
//
// # Security Model
//
// - HMAC-SHA256 signatures verified using crypto/subtle (constant-time comparison)
// - Verification is skipped when no secret is configured or no header is sent:
//   the shared secret is optional configuration, and a lenient default keeps
//   unsigned providers working
// - Body size limits enforced to prevent DoS attacks
// - No signature details leaked in error responses
// - Request logging excludes payloads
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured path (GET answers liveness probes)
//  2. Body size checked (reject with 413 if too large)
//  3. Double-encoded string bodies unwrapped; unparsable JSON rejected with 400
//  4. HMAC-SHA256 computed over the body, compared against the signature
//     header (reject with 401 on mismatch; skipped if secret or header absent)
//  5. Event classified and select kinds forwarded downstream (best-effort)
//  6. 200 returned with an acknowledgment body; processing errors after the
//     gates are logged and still acknowledged with success=false so the
//     provider does not retry
//
// # Error Responses
//
// - 405 Method Not Allowed: anything other than GET/POST
// - 400 Bad Request: body is not valid JSON
// - 401 Unauthorized: signature mismatch
// - 413 Payload Too Large: body exceeds max_body_size
// - 500 Internal Server Error: request body could not be read
package webhook
