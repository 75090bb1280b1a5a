package keyboard

import "testing"

func TestParseCombo(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    Combo
		wantErr bool
	}{
		{"single char", "n", Combo{Key: "n"}, false},
		{"named special", "Enter", Combo{Key: "Enter"}, false},
		{"named special lowercase", "enter", Combo{Key: "Enter"}, false},
		{"function key", "F5", Combo{Key: "F5"}, false},
		{"function key two digit", "f12", Combo{Key: "F12"}, false},
		{"single modifier", "Ctrl+n", Combo{Key: "n", Ctrl: true}, false},
		{"multi modifier", "Ctrl+Shift+n", Combo{Key: "n", Ctrl: true, Shift: true}, false},
		{"case insensitive modifier", "ctrl+alt+Delete", Combo{Key: "Delete", Ctrl: true, Alt: true}, false},
		{"unknown modifier", "Meta+n", Combo{}, true},
		{"empty", "", Combo{}, true},
		{"unrecognized multi-char key", "Foo", Combo{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCombo(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseCombo(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestComboStringCanonicalForm(t *testing.T) {
	c, err := ParseCombo("shift+ctrl+n")
	if err != nil {
		t.Fatalf("ParseCombo: %v", err)
	}
	if got, want := c.String(), "Ctrl+Shift+n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestComboMatches(t *testing.T) {
	a, _ := ParseCombo("Ctrl+n")
	b, _ := ParseCombo("ctrl+n")
	if !a.Matches(b) {
		t.Errorf("expected %+v to match %+v", a, b)
	}

	c, _ := ParseCombo("Ctrl+Shift+n")
	if a.Matches(c) {
		t.Errorf("did not expect %+v to match %+v", a, c)
	}
}
