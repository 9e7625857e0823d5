/*
Package journey implements the persistent journey store.

State changes are expressed as domain commands folded by the pure Reduce
function; persistence is a separate read-merge-write step performed by Store
against a ports.SnapshotStore substrate. Scalar fields follow "last writer wins,
zero means no-op" and the wish collection is always the union of what is stored
and what is added.

When the substrate reports domain.ErrStorageUnavailable the store degrades to
an in-memory journey for the rest of its life. Writes made in that mode do not
survive the process.
*/
package journey
