// Package session persists the authenticated browser session between runs.
//
// A session is a CredentialSet: the cookies captured from the render surface
// after an interactive login. Three backends implement Store:
//
//   - FileStore: plain JSON at session.file. Load also accepts a bare array
//     of cookies as exported by browser drivers.
//   - KeyringStore: the same document in the OS keychain.
//   - EncryptedFileStore: AES-GCM with a PBKDF2-derived key.
//
// Every Load failure is a cache miss for the caller: the crawl falls back to
// an interactive login rather than aborting.
package session
