// Package queue dispatches cleaning jobs to workers, either in-process or
// over RabbitMQ.
package queue

// Task identifies one uploaded file awaiting processing.
type Task struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}

// Dispatcher hands tasks to whichever worker arrangement is configured.
// Dispatch is at-least-once: a task may be delivered twice, and processing a
// job that is already terminal is a no-op for the worker.
type Dispatcher interface {
	Dispatch(task Task) error
	Close() error
}
