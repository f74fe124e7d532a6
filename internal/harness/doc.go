// Package harness runs collection scenarios and compares their traces with
// golden files.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: remove_admins
//	description: "Removing by match drops every admin"
//	allow_unknown: false
//	records:
//	  - persisted: {userName: ada, age: 22}
//	    transient: {admin: false}
//	steps:
//	  - op: remove
//	    match: {key: admin, value: true}
//	    expect: {removed: 1, count: 2}
//	  - op: set
//	    item: 0
//	    key: nickname
//	    value: x
//	    expect: {error: UNKNOWN_ATTRIBUTE}
//	assertions:
//	  - type: order
//	    key: age
//	    values: [22, 33]
//
// Operations: add, remove (index, match or items), reset, find, set, get,
// clone, cache and clear_cache. Items are addressed by position in the
// collection at the time the step runs.
//
// # Assertion Types
//
//   - count: entities matching where (all when omitted) number exactly count
//   - order: an attribute read across the collection equals values
//   - canonical: an entity's canonical form equals expect exactly
//   - namespace: a key lives in persisted, transient or is absent
//
// # Deterministic Testing
//
// Every run builds a fresh collection whose entities take sequential IDs
// (e-1, e-2, ...) and whose logs are captured in memory. The trace records
// each step's outcome, result, collection size and warning count, so two
// runs of the same scenario produce byte-identical snapshots.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/remove.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
