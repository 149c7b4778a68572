package ffmpeg

import (
	"strings"
	"sync"
)

const defaultTailSize = 16 << 10

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
	lost  bool
}

func newTailBuffer(limit int) *tailBuffer {
	if limit <= 0 {
		limit = defaultTailSize
	}
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
		t.lost = true
	}
	return len(p), nil
}

// String returns the retained text, trimmed. A leading "..." marks that
// earlier output was discarded.
func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	text := strings.TrimSpace(string(t.buf))
	if t.lost && text != "" {
		return "..." + text
	}
	return text
}

// diagnostic formats stderr text for inclusion in an error message.
func diagnostic(t *tailBuffer) string {
	text := t.String()
	if text == "" {
		return "no diagnostic output"
	}
	return "stderr: " + text
}
