// Package harness runs conformance scenarios for the query-parameter parser.
//
// # Scenario Format
//
// Scenarios are YAML files. Each case is an ordered list of key=value query
// parameters, executed against an in-memory content store loaded with the
// testutil fixtures:
//
//	name: operators
//	description: "What this scenario validates"
//	config: ../config            # optional CUE parser config directory
//	alias: c                     # optional field alias
//	order: ["-datepublish"]      # optional sort order
//	limit: 10                    # optional row limit
//	query_id: test-query-001     # optional fixed query ID
//	setup:                       # optional extra content rows
//	  - {id: 7, slug: extra, username: zed}
//	cases:
//	  - name: lt_and_neq
//	    query: ["id=<5 && !1"]
//	    expect:
//	      expression: "(id < :id_1 AND id <> :id_2)"
//	      params: {id_1: "5", id_2: "1"}
//	      ids: [2, 3, 4]
//	  - name: mixed
//	    query: ["id=1&&2||3"]
//	    expect:
//	      error: MIXED_OPERATORS
//
// # Expectations
//
// Every expect field is optional and only the fields present are checked:
//
//   - expression: rendered predicate of the combined filter
//   - params: the full parameter map (exact match)
//   - sql: compiled SQL text
//   - args: ordered SQL arguments
//   - rows: number of returned rows
//   - ids: returned row ids, in order
//   - error: error code (a dsl ErrorKind or engine RuntimeErrorCode)
//
// # Deterministic Testing
//
// Each run uses a fresh in-memory SQLite database, a fixed query ID and a
// discard logger, so repeated runs produce byte-identical golden snapshots.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/operators.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
