// Package pkg contains the depstack libraries.
//
// Layout:
//
//   - coord: the lib/coordinate model shared by everything below
//   - provider: the provider contract and type-dispatching registry
//   - provider/maven, provider/local, provider/git: concrete providers
//   - resolve: the transitive expansion engine and lib-map operations
//   - executor: the bounded worker pool driving provider I/O
//   - depsfile: deps.toml manifest parsing
//   - httputil, cache: HTTP plumbing and service-level caches
//   - store: resolution archives for the HTTP service
//   - errors: structured error codes
//   - buildinfo: ldflags-injected version information
package pkg
