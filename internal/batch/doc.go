// Package batch scans many targets with bounded concurrency.
//
// Targets usually come from a list file (one per line, blank lines and
// lines starting with # ignored). Each target is scanned once; results keep
// the order of the input so reports are stable across runs.
package batch
