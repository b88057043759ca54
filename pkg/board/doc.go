// Package board provides type-safe Go definitions and Redis persistence for
// the Flowboard Board document.
//
// # Overview
//
// A Board is the persistent state of one Feature: its maturity, its position
// in the flow state graph, the evaluation state of every gate, the artifacts
// contributed by producer roles, and an append-only audit trail. One
// orchestrator session drives a given Board at a time; conflicting writers
// are rejected with ErrConflict by an optimistic version check rather than
// silently overwritten.
//
// # Core Concepts
//
// Gates are named checkpoints guarding flow state edges. Within a cycle a
// gate moves from not_reached to passed, failed, skipped, or blocked, and
// never back.
//
// Artifacts are structured payloads contributed by external producer roles.
// Each role owns exactly one artifact slot; the capability check is enforced
// at the store boundary, not by convention.
//
// History records every mutation to flow_state, gates, maturity, or cycle.
// Entries are immutable and committed in the same write as the mutation they
// describe.
//
// # Multi-Instance Support
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so
// multiple flowboard instances can coexist on a single Redis server.
package board
