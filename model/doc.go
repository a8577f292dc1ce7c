// Package model defines the minimal language-model abstraction the step
// classifier depends on: a single-shot Completer turning a system prompt
// plus user prompt into text. Vendor adapters live in the subpackages
// model/openai and model/anthropic; MockCompleter supports deterministic
// tests, including forcing the rule-based fallback path.
package model
