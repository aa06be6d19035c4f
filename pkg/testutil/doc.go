// Package testutil provides utilities for testing dotmod components.
//
// Key components:
//   - TestEnvironment: a temporary home and dotmod roots on the real
//     filesystem, with environment variables pointed into it
//   - FakeUsers: an in-memory user and group database
//   - MemoryFetcher: a counting fetcher serving fixed bodies
//   - RecordingFS: a filesystem wrapper that records chown calls and
//     injects failures on chosen paths
//
// Tests stay isolated: every environment lives under t.TempDir() and
// nothing is shared between tests.
package testutil
