package progress

import (
	"errors"
	"testing"
)

// TestTruncatePath verifies path shortening for bar labels
func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path string
		max  int
		want string
	}{
		{"/a/b/c/d/file.txt", 2, "…/d/file.txt"},
		{"/a/b/c/d/file.txt", 3, "…/c/d/file.txt"},
		{"file.txt", 2, "file.txt"},
		{"a/file.txt", 2, "file.txt"},
	}
	for _, tt := range tests {
		if got := truncatePath(tt.path, tt.max); got != tt.want {
			t.Errorf("truncatePath(%q, %d) = %q, want %q", tt.path, tt.max, got, tt.want)
		}
	}
}

// TestDownloadUINonTerminal exercises the text fallback path end to end
func TestDownloadUINonTerminal(t *testing.T) {
	ui := NewDownloadUI(2)

	// go test runs without a TTY so bars must be inactive
	if ui.IsTerminal() {
		t.Skip("running under a terminal")
	}

	ok := ui.AddFileBar(1, "file-1", "/tmp/out/a.bin", 1024)
	ok.UpdateProgress(0.5)
	ok.Complete(nil)

	bad := ui.AddFileBar(2, "file-2", "/tmp/out/b.bin", 2048)
	bad.SetRetry(1)
	bad.Complete(errors.New("fetch failed"))

	ui.Wait()

	if got := ui.GetCompleted(); got != 2 {
		t.Errorf("GetCompleted() = %d, want 2", got)
	}
}

// TestNopReporter verifies the quiet reporter accepts all calls
func TestNopReporter(t *testing.T) {
	var r Reporter = NopReporter{}
	r.Start(100, "download")
	r.Update(50)
	r.SetDescription("verify")
	r.Error(errors.New("boom"))
	r.Finish()
}
