/*
Package ports defines the driven ports (interfaces) of the lantern journey.

These interfaces decouple the core logic from external implementations, allowing
the journey store and the flow controller to work with various storage backends
and remote services.

# Key Interfaces

  - SnapshotStore: durable key/value substrate for encoded journey snapshots.
  - DistributedLocker: optional cross-process lock around read-merge-write.
  - LanternGateway / LanternReader: the remote lantern service contract.
*/
package ports
