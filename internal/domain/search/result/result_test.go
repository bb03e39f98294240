package result

import "testing"

func TestNew(t *testing.T) {
	md := map[string]string{"source": "u1"}

	r := New("doc-1", 0.95, "hello", md)

	if r.ID() != "doc-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Score() != 0.95 {
		t.Errorf("Score() = %f", r.Score())
	}
	if r.Content() != "hello" {
		t.Errorf("Content() = %q", r.Content())
	}
	if r.Metadata()["source"] != "u1" {
		t.Errorf("Metadata() = %v", r.Metadata())
	}
}
