package session

// Event is the typed message union a Session delivers on its event channel.
// Output chunks arrive in the order the child produced them per stream;
// there is no ordering guarantee between stdout and stderr. ExitEvent and
// ErrorEvent are each terminal for the process.
type Event interface {
	isEvent()
}

// StdoutEvent carries one verbatim chunk from the child's stdout.
type StdoutEvent struct {
	Data []byte
}

// StderrEvent carries one verbatim chunk from the child's stderr.
type StderrEvent struct {
	Data []byte
}

// ExitEvent reports that the child process has exited.
// Code is the numeric exit code; Signaled is true when the process was
// killed by a signal (in which case Code is not meaningful to the user).
type ExitEvent struct {
	Code     int
	Signaled bool
}

// ErrorEvent reports a spawn or runtime process error. The Session stays
// alive (and disposable) after an error; there is no automatic restart.
type ErrorEvent struct {
	Err error
}

func (StdoutEvent) isEvent() {}
func (StderrEvent) isEvent() {}
func (ExitEvent) isEvent()   {}
func (ErrorEvent) isEvent()  {}
