package chat

import (
	"fmt"
	"testing"
)

func TestMessageLogWindow(t *testing.T) {
	var log MessageLog
	for i := 0; i < 5; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		log.Append(role, fmt.Sprintf("m%d", i))
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"zero limit", 0, []string{}},
		{"negative limit", -3, []string{}},
		{"last two", 2, []string{"m3", "m4"}},
		{"exact length", 5, []string{"m0", "m1", "m2", "m3", "m4"}},
		{"beyond length", 30, []string{"m0", "m1", "m2", "m3", "m4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := log.Window(tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("Window(%d) returned %d entries, want %d", tt.limit, len(got), len(tt.want))
			}
			for i, msg := range got {
				if msg.Content != tt.want[i] {
					t.Errorf("entry %d = %q, want %q", i, msg.Content, tt.want[i])
				}
			}
		})
	}
}

func TestMessageLogWindowReturnsCopy(t *testing.T) {
	var log MessageLog
	log.Append(RoleUser, "original")

	w := log.Window(1)
	w[0].Content = "changed"

	if got := log.Entries()[0].Content; got != "original" {
		t.Errorf("mutating the window changed the log: got %q", got)
	}
}

func TestMessageLogWindowMinProperty(t *testing.T) {
	var log MessageLog
	for n := 0; n < 12; n++ {
		for limit := 0; limit < 15; limit++ {
			got := log.Window(limit)
			want := limit
			if n < want {
				want = n
			}
			if len(got) != want {
				t.Fatalf("len=%d limit=%d: got %d entries, want %d", n, limit, len(got), want)
			}
			for i, msg := range got {
				if wantContent := fmt.Sprintf("%d", n-want+i); msg.Content != wantContent {
					t.Fatalf("len=%d limit=%d: entry %d = %q, want %q", n, limit, i, msg.Content, wantContent)
				}
			}
		}
		log.Append(RoleUser, fmt.Sprintf("%d", n))
	}
}

func TestMessageLogReset(t *testing.T) {
	var log MessageLog
	log.Append(RoleUser, "a")
	log.Append(RoleAssistant, "b")

	log.Reset()

	if log.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", log.Len())
	}
	if got := log.Window(10); len(got) != 0 {
		t.Errorf("Window after Reset returned %d entries", len(got))
	}

	log.Append(RoleUser, "c")
	if got := log.Entries(); len(got) != 1 || got[0].Content != "c" {
		t.Errorf("Entries after Reset+Append = %+v", got)
	}
}
