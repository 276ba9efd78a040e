// Package translation sends batches of Portuguese ledger strings to an
// OpenAI-compatible chat completion endpoint (OpenRouter by default) and
// parses the line-oriented "ID: translation" reply.
package translation
