package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrNoSnapshot        = fmt.Errorf("no mute snapshot stored")
	ErrFilterUnavailable = fmt.Errorf("content filter unavailable")
	ErrBusClosed         = fmt.Errorf("bus closed")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
)
