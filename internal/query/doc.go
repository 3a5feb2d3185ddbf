// Package query evaluates declarative filter/sort specifications against
// the index. Evaluation is synchronous over a point-in-time snapshot:
// records are sorted first, then filtered, so consumers paging through
// results see a stable global order no matter how many records a filter
// drops.
//
// TestFile orders its checks from cheap to expensive and short-circuits:
// filters that constrain image attributes reject non-images before any
// decode happens, and the color-proximity distance stops summing as soon
// as the running total exceeds the threshold.
package query
