package outbound

// TaskDispatcher schedules a unit of work on the shared worker pool. Submit
// returns an error only when the task could not be scheduled at all.
type TaskDispatcher interface {
	Submit(task func()) error
}
