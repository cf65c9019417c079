// Package domain defines the error taxonomy shared by the respkv server.
//
// Every failure that reaches a client is a *DomainError carrying a stable
// code. Codes are grouped by stage:
//
//   - RESP-xxxx: decoding and command construction (protocol errors)
//   - CMD-xxxx:  command execution (caller errors)
//   - SYS-xxxx:  server-side failures (storage, internal)
//
// Protocol and command errors end the current request only and the
// connection keeps serving. RESP-4130 (limit exceeded) also closes the
// connection.
package domain
