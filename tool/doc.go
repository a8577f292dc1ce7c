// Package tool implements the sender subsystem: the pluggable message
// tools (text, location, image, voice) a classified step dispatches to,
// the registry they are looked up in, and the provider-shaped webhook
// envelope they build.
//
// Each sender builds the WhatsApp-style envelope for its payload type,
// validates its own parameter set pre-flight, and performs delivery
// through the shared transport client. Media senders additionally upload
// their file before message construction.
package tool
