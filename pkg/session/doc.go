/*
Package session implements session management and persistence orchestration.

Manager serializes access to each session with a reference-counted local lock
and, when configured, a DistributedLocker shared across replicas. Open hands out
a Session, the domain.Session implementation used by requests: reads come from
the snapshot loaded at open time, writes are buffered and merged into the
stored payload on Save.
*/
package session
