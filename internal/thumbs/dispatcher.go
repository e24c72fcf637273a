// Package thumbs generates resized image variants asynchronously.
package thumbs

import "context"

// Job identifies an image to generate variants for.
type Job struct {
	UserID string
	FileID string
}

// Dispatcher hands off a job to an asynchronous worker. Enqueue never
// blocks on job completion; a failed enqueue is reported as an error for
// the caller to log, not to propagate to its own caller.
type Dispatcher interface {
	Enqueue(ctx context.Context, job Job) error
}
