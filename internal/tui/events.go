package tui

// TaskID identifies a step in the progress display.
type TaskID int

const (
	TaskConnect TaskID = iota // Loading credentials, reaching the tracker
	TaskSearch                // Running the bug task search
	TaskTriage                // Evaluating and applying policies per bug
)

// TaskStatus is the current state of a step.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all progress events.
type Event interface {
	isEvent()
}

// TaskEvent updates one step's state.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string  // optional, e.g. "12/30"
	Count    int     // item count, e.g. bugs found
	Progress float64 // 0.0 to 1.0
	Error    error   // set when Status is StatusError
}

func (TaskEvent) isEvent() {}

// DoneEvent signals that the run is finished.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
