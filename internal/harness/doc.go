// Package harness runs conformance scenarios against the engine.
//
// A scenario declares composite types in CUE, builds named instances of
// them as dynamic records, and states what the engine must decide about
// those instances.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs:
//	  - specs/geometry          # directory or .cue file
//	schema: |                   # optional inline declarations
//	  types: Tag: fields: [{name: "label", type: "string"}]
//	instances:
//	  origin:
//	    type: Point
//	    value: {x: 0, y: 0}
//	  alias:
//	    type: "*Point"
//	    value: {$ref: origin}
//	checks:
//	  - type: substitutable
//	    operands: [origin, alias]
//	    expect: false
//	  - type: same_hash
//	    operands: [origin, origin]
//	  - type: stable_hash
//	    operands: [origin]
//
// Instances are built in file order and may share earlier instances with
// {$ref: name}. Float fields accept "bits:0x..." for exact bit patterns.
//
// # Check Types
//
//   - substitutable: the engine's verdict on two operands equals expect.
//     Substitutable operands must also hash equally.
//   - same_hash: whether the operands hash equally equals expect (default true).
//   - stable_hash: the operand hashes the same twice and on a fresh engine
//     with the same salt.
//
// # Golden Snapshots
//
// Hash values depend on the engine salt, so golden snapshots hold only
// verdicts. See RunWithGolden.
package harness
