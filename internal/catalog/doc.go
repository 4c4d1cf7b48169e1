// Package catalog loads the class catalog that declares how many classes a
// dataset has and which species name belongs to each id.
//
// The catalog document is YAML with an integer nc and a names field that is
// either a sequence (index = id) or a mapping of id to name. Ids must be
// contiguous from zero with no gaps or duplicates; Load reports violations
// instead of repairing them. A Catalog is immutable once loaded and is
// passed explicitly to every stage that consults it.
package catalog
