// Package invoke runs external programs, such as the contract compilation
// script, synchronously and turns their failures into structured errors.
//
// Output is streamed to optional writers while the last few KiB of each
// stream are kept for error reports.
package invoke
