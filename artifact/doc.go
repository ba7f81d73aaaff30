// Package artifact contains implementations of core.ArtifactStore used to
// persist episode records.
//
// Artifacts are grouped by job name. FileStore writes one JSON file per
// artifact named <job>_<artifactID>.json, which lets an interrupted batch
// run skip jobs that already have a record. InMemoryStore serves tests.
package artifact
