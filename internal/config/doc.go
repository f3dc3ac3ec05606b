// Package config loads parser configuration written in CUE.
//
// A config directory holds one or more .cue files that together define a
// top-level "parser" struct:
//
//	parser: {
//		alias: "c"
//		table: "content"
//		columns: ["id", "slug", "title"]
//		order: ["-datepublish"]
//		limit: 20
//		matchers: [
//			{pattern: #"^~(\w+)$"#, operator: "like", template: "%${1}%", priority: true},
//			{pattern: #"\{([\w,]+)\}"#, operator: "in", transform: "split"},
//		]
//	}
//
// Every field is optional. Matchers are appended to the default table in
// the order written; priority matchers are moved to the front, so the last
// priority matcher in the file is tried first.
package config
