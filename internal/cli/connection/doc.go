// Package connection manages the CLI's TCP connection to a respkv server.
//
// A Client writes one request array and reads one reply per call. The
// Manager dials lazily and drops a connection after a transport error so
// the next call reconnects.
package connection
