/*
Package ports defines the driven ports (interfaces) used by the session layer.

# Key Interfaces

  - SessionStore: persists session payloads (memory, file, Redis, bbolt, SQLite).
  - DistributedLocker: coordinates access to a session across replicas.

RunSessionStoreContract is the shared test suite every SessionStore adapter runs.
*/
package ports
