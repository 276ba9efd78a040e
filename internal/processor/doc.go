// Package processor drives a translation run: it reads the ledger, diffs the
// unique strings against the existing dictionary, translates the outstanding
// ones batch by batch and saves the merged dictionary.
package processor
