// Package batch plans the outstanding translation work: it drops strings that
// are already in the dictionary and splits the rest into bounded batches.
package batch
