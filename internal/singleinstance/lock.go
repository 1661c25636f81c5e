// Package singleinstance keeps one switcher daemon running per user.
package singleinstance

import "errors"

// ErrAlreadyRunning is returned by TryLock when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another wincycle daemon is already running")

// Acquire takes the per-user lock at the default location.
func Acquire() (*Lock, error) {
	name, err := DefaultName()
	if err != nil {
		return nil, err
	}
	return TryLock(name)
}
