// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package parallel runs row bands of a software frame on a fixed set of
// goroutines.
//
// A frame is split into horizontal bands with SplitRows; each band writes
// a disjoint set of target rows, so bands need no locking. WorkerPool keeps
// one queue per worker and lets idle workers steal from busy ones, which
// evens out bands that contain more glyphs than others.
package parallel
