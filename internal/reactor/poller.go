package reactor

type event struct {
	fd       int
	readable bool
	writable bool
	hangup   bool
	wakeup   bool
}

type poller interface {
	add(fd int) error
	setWritable(fd int, on bool) error
	remove(fd int) error
	// wait blocks until at least one event is ready and fills events
	wait(events []event) (int, error)
	// wake interrupts wait from any goroutine
	wake() error
	close() error
}
