package services

import "errors"

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTerminalTask      = errors.New("task already reached a terminal status")
	ErrInvalidTransition = errors.New("invalid task status transition")
)
