// Package models lists the chat models offered by the configured endpoint so
// users can pick a value for --model.
package models
