package main

// noopBus satisfies board.Bus for inspection commands that bind a board
// only to read its post-reset bank layout, never to run it.
type noopBus struct{}

func (noopBus) ScheduleIRQ(line string, cycle uint32) {}
func (noopBus) CancelIRQ(line string)                 {}
func (noopBus) AckIRQ(line string)                    {}
