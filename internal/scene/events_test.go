// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum


package scene

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestEvents_SequencedUnderConcurrency(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	var s *State
	sink := SinkFunc(func(e Event) {
		// Reading the scene during delivery must not block other operations.
		_ = s.Decorations()
		if e.Seq%7 == 0 {
			time.Sleep(time.Millisecond)
		}
		rec.Emit(e)
	})
	s = New("scene-seq", DefaultConfig(), nil, sink)
	t.Cleanup(s.Close)
	withBackground(t, s)

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				name := fmt.Sprintf("deco-%d-%d", w, i)
				if _, err := s.AddDecoration(entry(name, "https://img.test/"+name+".png", ""), AddOptions{}); err != nil {
					t.Errorf("AddDecoration failed: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	events := rec.Events()
	if len(events) == 0 {
		t.Fatal("expected events")
	}
	for i, e := range events {
		if e.Seq != uint64(i+1) {
			t.Fatalf("expected seq %d at position %d, got %d", i+1, i, e.Seq)
		}
		if e.SceneID != "scene-seq" {
			t.Fatalf("expected scene id on every event, got %q", e.SceneID)
		}
	}

	added := 0
	for _, e := range events {
		if e.Type == EventDecorationAdded {
			added++
		}
	}
	if added != workers*perWorker {
		t.Errorf("expected %d decoration_added events, got %d", workers*perWorker, added)
	}
}

func TestEvents_FailedOperationKeepsSequenceContiguous(t *testing.T) {
	t.Parallel()
	s, rec := newTestScene(t, nil)

	if _, err := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{}); err == nil {
		t.Fatal("expected ErrBackgroundRequired")
	}
	withBackground(t, s)
	if _, err := s.AddDecoration(entry("b", "https://img.test/b.png", ""), AddOptions{}); err != nil {
		t.Fatalf("AddDecoration failed: %v", err)
	}

	for i, e := range rec.Events() {
		if e.Seq != uint64(i+1) {
			t.Errorf("expected seq %d, got %d (%s)", i+1, e.Seq, e.Type)
		}
	}
}
