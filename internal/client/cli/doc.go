// Package cli provides the GophKeeper command-line client.
//
// Every invocation runs exactly one command and exits:
//
//	gophkeeper [global flags] login [email] [--raw]
//	gophkeeper [global flags] unlock [--raw]
//	gophkeeper [global flags] lock
//	gophkeeper [global flags] logout
//	gophkeeper [global flags] status [--session KEY]
//	gophkeeper [global flags] accounts
//	gophkeeper [global flags] switch <accountId>
//
// login and unlock print a session key. Later commands receive it through
// --session or the GOPHKEEPER_SESSION environment variable; the key is read
// here and passed down explicitly, never kept in process-wide state.
//
// Global flags are described in package config.
package cli
