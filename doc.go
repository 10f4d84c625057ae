// Package mrfvalidator validates large JSON documents against a JSON Schema
// and, in the same forward pass, copies selected regions of the document into
// separate JSON files.
//
// One token stream feeds two consumers: the extraction router (package
// extract), which tracks the current location and forwards matching regions
// to their sinks, and a value builder whose result is handed to the schema
// validator (package schema). Failures come back as an error tree that
// package diag flattens into ordered diagnostics.
//
// Layout:
// - extract: path patterns, location tracking, routing and report sinks.
// - diag: error trees, message templates, flattening and rendering.
// - schema: the JSON Schema engine adapter.
// - profile: extraction tables per document kind.
// - source/gojson, source/json: tokenizers.
// - cmd/mrfvalidator: the command line tool.
//
// Typical usage:
//
//	v, err := schema.CompileFile("in-network-rates.json", schema.Options{})
//	p, err := profile.Builtin().Lookup(profile.KindInNetworkRates)
//	res, err := mrfvalidator.Validate(ctx, v, f, mrfvalidator.Options{
//		Profile:   &p,
//		OutputDir: "/output",
//		Writer:    extract.DefaultWriterOptions,
//	})
//	for d := range res.Diagnostics(nil) {
//		fmt.Println(d.Message)
//	}
package mrfvalidator
