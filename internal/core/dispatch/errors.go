package dispatch

import "fmt"

// SendError is what the UI reports when a key press could not be delivered.
type SendError struct {
	Label string
	Spec  string
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("Tecla: %s\nRetorno: %s\n\n%v", e.Label, e.Spec, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
