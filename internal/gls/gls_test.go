// Unless explicitly stated otherwise all files in this repository are
// licensed under the Apache License, Version 2.0.
// Copyright 2024 The minitrace-go Authors.

package gls

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDStableWithinGoroutine(t *testing.T) {
	a := ID()
	b := ID()
	assert.Equal(t, a, b)
}

func TestIDDistinctAcrossGoroutines(t *testing.T) {
	var wg sync.WaitGroup
	ids := make([]uint64, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = ID()
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "goroutine id %d reused", id)
		seen[id] = true
	}
}

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry()
	calls := 0
	newFn := func() interface{} {
		calls++
		return "value"
	}

	v1 := r.GetOrCreate(newFn)
	v2 := r.GetOrCreate(newFn)

	assert.Equal(t, "value", v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
}

func TestRegistryPerGoroutineIsolation(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	results := make([]int, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := r.GetOrCreate(func() interface{} { return i }).(int)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for i, v := range results {
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 4, r.Len())
}

func TestRegistryDeleteAndSweep(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreate(func() interface{} { return 1 })
	assert.Equal(t, 1, r.Len())

	r.Delete()
	assert.Equal(t, 0, r.Len())

	r.GetOrCreate(func() interface{} { return 1 })
	r.Sweep(func(id uint64, v interface{}) bool { return false })
	assert.Equal(t, 0, r.Len())
}
