/*
Package ports defines the driven ports (interfaces) of the ledger.

These interfaces decouple the core logic from external implementations, allowing
the ledger to persist to various storage backends and to coordinate replicas.

# Key Interfaces

  - SnapshotStore: persists and loads the full ledger snapshot after every commit.
  - DistributedLocker: provides distributed locking so that replicas serialize operations.
*/
package ports
