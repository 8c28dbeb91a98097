package outbound

// TaskDispatcher runs tasks on a shared worker pool. *ants.Pool satisfies it.
type TaskDispatcher interface {
	Submit(task func()) error
}
