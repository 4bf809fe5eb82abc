//go:build deadlock

package lrucache

import "github.com/sasha-s/go-deadlock"

// rwMutex reports lock-order inversions and locks held for too long when
// built with -tags deadlock.
type rwMutex = deadlock.RWMutex
