// Package dictionary loads and saves the translation dictionary, a flat JSON
// object mapping source strings to their translations. Saved files are
// sorted with Brazilian Portuguese collation so diffs stay stable.
package dictionary
