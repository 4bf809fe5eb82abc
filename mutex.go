//go:build !deadlock

package lrucache

import "sync"

type rwMutex = sync.RWMutex
