// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package cartouche

import "testing"

func TestDecodeOption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", "Offre de base"},
		{"base", "Offre de base"},
		{"option-1", "Option 1"},
		{"option-12", "Option 12"},
		{"option-", "option-"},
		{"premium", "premium"},
		{"Base", "Base"},
	}

	for _, tt := range tests {
		if got := DecodeOption(tt.input); got != tt.expected {
			t.Errorf("DecodeOption(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestLayout_AllFields(t *testing.T) {
	t.Parallel()

	o := Layout("bg-1", Info{ProjectName: "Place du Marché", StreetOrZone: "Rue Haute", Option: "option-2", HasCartouche: true})
	if o == nil {
		t.Fatal("expected overlay")
	}
	if o.Interactive {
		t.Error("expected overlay to be non-interactive")
	}
	if len(o.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(o.Lines))
	}

	want := []Line{
		{Field: "projectName", Text: "Place du Marché", X: 258, Y: 536, FontSize: 17},
		{Field: "streetOrZone", Text: "Rue Haute", X: 258, Y: 558, FontSize: 12},
		{Field: "option", Text: "Option 2", X: 258, Y: 575, FontSize: 12},
	}
	for i := range want {
		if o.Lines[i] != want[i] {
			t.Errorf("line %d: expected %+v, got %+v", i, want[i], o.Lines[i])
		}
	}
}

func TestLayout_MissingFieldsCloseUp(t *testing.T) {
	t.Parallel()

	o := Layout("bg-1", Info{StreetOrZone: "Zone B", HasCartouche: true})
	if len(o.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(o.Lines))
	}
	if o.Lines[0].Y != 536 || o.Lines[0].Text != "Zone B" {
		t.Errorf("expected street on first row, got %+v", o.Lines[0])
	}
	if o.Lines[1].Y != 553 || o.Lines[1].Text != "Offre de base" {
		t.Errorf("expected base offer on second row, got %+v", o.Lines[1])
	}
}

func TestLayout_NoCartouche(t *testing.T) {
	t.Parallel()

	if o := Layout("bg-1", Info{ProjectName: "x"}); o != nil {
		t.Errorf("expected nil overlay, got %+v", o)
	}
}

func TestTracker_RecreatesOnlyOnChange(t *testing.T) {
	t.Parallel()

	var tr Tracker
	info := Info{ProjectName: "P", HasCartouche: true}

	first, recreated := tr.Update("bg-1", info)
	if !recreated || first == nil {
		t.Fatal("expected initial overlay")
	}

	same, recreated := tr.Update("bg-1", info)
	if recreated || same.ID != first.ID {
		t.Error("expected unchanged binding to keep the overlay")
	}

	info.Option = "option-3"
	changed, recreated := tr.Update("bg-1", info)
	if !recreated || changed.ID == first.ID {
		t.Error("expected field change to recreate the overlay")
	}

	moved, recreated := tr.Update("bg-2", info)
	if !recreated || moved.ID == changed.ID || moved.AnchorID != "bg-2" {
		t.Error("expected anchor change to recreate the overlay")
	}

	tr.Clear()
	if tr.Current() != nil {
		t.Error("expected overlay destroyed")
	}
}
