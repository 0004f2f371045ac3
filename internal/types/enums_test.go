package types

import "testing"

func TestParseDrainageClass(t *testing.T) {
	tests := []struct {
		in     string
		want   DrainageClass
		wantOK bool
	}{
		{"Well drained", DrainageWell, true},
		{"  well drained ", DrainageWell, true},
		{"SOMEWHAT POORLY DRAINED", DrainageSomewhatPoorly, true},
		{"Very poorly drained", DrainageVeryPoorly, true},
		{"Excessively drained", DrainageExcessively, true},
		{"loam", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDrainageClass(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseDrainageClass(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseAspect(t *testing.T) {
	for _, a := range AllAspects {
		got, ok := ParseAspect(string(a))
		if !ok || got != a {
			t.Errorf("ParseAspect(%q) = %q, %v", a, got, ok)
		}
	}
	if got, ok := ParseAspect(" sw "); !ok || got != AspectSW {
		t.Errorf("ParseAspect(\" sw \") = %q, %v; want SW", got, ok)
	}
	if _, ok := ParseAspect("north"); ok {
		t.Error("ParseAspect(\"north\") should fail")
	}
}

func TestConditionValid(t *testing.T) {
	for _, c := range AllConditions {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if Condition("icy").Valid() {
		t.Error("unknown label should be invalid")
	}
	if len(AllConditions) != 7 {
		t.Errorf("expected 7 labels, got %d", len(AllConditions))
	}
}
