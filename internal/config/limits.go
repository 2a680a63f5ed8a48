package config

import "time"

const (
	// MaxProjectIDLength bounds the opaque project identifier supplied by the
	// chat collaborator.
	MaxProjectIDLength = 32

	// MaxDestinationPathLength bounds destination paths. Longer paths
	// indicate overly deep hierarchies (anti-pattern).
	MaxDestinationPathLength = 500

	// MaxIncludeDepth bounds recursion while resolving include directives.
	MaxIncludeDepth = 10

	// MaxTotalIncludes bounds the total number of resolved includes across
	// one whole composition. Directives past the cap are left verbatim.
	MaxTotalIncludes = 100

	// MaxImportDepth bounds breadth-first import-graph discovery.
	MaxImportDepth = 10

	// MaxGraphFiles bounds the number of distinct files in one import graph.
	MaxGraphFiles = 50

	// RevisionAllocationAttempts is the optimistic-concurrency retry budget
	// for revision-number allocation.
	RevisionAllocationAttempts = 5

	// RateLimitWindow and RateLimitMaxCalls define the per-user fixed-window
	// admission policy for generation calls.
	RateLimitWindow   = 60 * time.Second
	RateLimitMaxCalls = 10

	// RenderTimeout bounds one sandboxed server render.
	RenderTimeout = 5 * time.Second
)
