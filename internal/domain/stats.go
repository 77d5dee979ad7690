package domain

import "time"

// UpdateStats holds the outcome of one full update cycle.
// FeedsProcessed counts sources whose task completed without error;
// Errors counts sources whose task failed. A source with zero new
// articles still counts as processed.
type UpdateStats struct {
	FeedsProcessed int
	NewArticles    int
	Errors         int
	Duration       time.Duration
}
