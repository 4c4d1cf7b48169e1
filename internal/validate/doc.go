// Package validate checks indexed dataset statistics against the class
// catalog and renders ground-truth audit images for manual inspection.
//
// Each check is independent: a report may carry any combination of
// findings. Which findings stop the pipeline is decided by Options, not by
// Check itself. Audit rendering is diagnostic only and never affects later
// stages.
package validate
