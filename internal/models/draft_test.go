package models

import "testing"

func TestSaveTypeValid(t *testing.T) {
	for _, s := range []SaveType{SaveTypeAuto, SaveTypeManual, SaveTypeSubmitted} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []SaveType{"", "draft", "AUTO"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestDraftReviewable(t *testing.T) {
	cases := []struct {
		name string
		d    Draft
		want bool
	}{
		{"submitted", Draft{SaveType: SaveTypeSubmitted}, true},
		{"submitted but published", Draft{SaveType: SaveTypeSubmitted, IsPublished: true}, false},
		{"auto", Draft{SaveType: SaveTypeAuto}, false},
		{"manual", Draft{SaveType: SaveTypeManual}, false},
	}
	for _, c := range cases {
		if got := c.d.Reviewable(); got != c.want {
			t.Errorf("%s: Reviewable() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSpecMapScanNil(t *testing.T) {
	var m SpecMap
	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if m == nil {
		t.Error("nil scan should yield an empty map")
	}
}
