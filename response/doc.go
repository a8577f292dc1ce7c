// Package response reads and interprets the companion API's single-slot
// "latest message" endpoint. Extraction helpers are total functions over a
// possibly-absent message: they report absence instead of failing, because
// the endpoint returns the same transport shape for raw echoes and
// processed extractions and absence of content is an expected state.
package response
