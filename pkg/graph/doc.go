// Package graph implements the layout core of the diagram engine:
// category grouping and rank (layer) assignment.
//
// Grouping partitions a node collection into category buckets (and, for
// components, nested subcategory buckets). Ranking computes an integer
// layering level per node so that diagrams read in dependency order even
// when the underlying dependency graph contains cycles.
//
// Both passes are pure, synchronous, and deterministic for a given input
// order. Nothing here touches I/O.
package graph
