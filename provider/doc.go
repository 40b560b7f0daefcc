// Package provider defines the contract every data provider satisfies:
// declarative query/data schemas registered per model, and a Fetcher
// triple that turns validated parameters into rows of data. The core
// talks to vendors exclusively through this contract; how a fetcher
// reaches its upstream API is its own business.
//
// Design decisions:
//   - Pure edges: TransformQuery and TransformData are synchronous and
//     side-effect free; ExtractData is the only place I/O happens and
//     the only suspension point in the pipeline.
//   - Credentials stay out of data: secret material flows into
//     ExtractData from the per-call context and never appears in rows.
//   - The reference handle: the Standard provider name carries the
//     uniform schemas and never executes a fetch.
package provider
