package supervisor

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

// tailLimit bounds the bytes of each output stream kept for diagnostics.
const tailLimit = 4096

// lineTail is the io.Writer attached to a child output stream. Complete lines
// are logged at debug level; the last tailLimit bytes are retained.
type lineTail struct {
	mu     sync.Mutex
	log    zerolog.Logger
	stream string
	buf    []byte // incomplete trailing line, at most tailLimit bytes
	tail   []byte
}

func newLineTail(log zerolog.Logger, stream string) *lineTail {
	return &lineTail{log: log, stream: stream}
}

func (lt *lineTail) Write(p []byte) (int, error) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.tail = append(lt.tail, p...)
	if len(lt.tail) > tailLimit {
		lt.tail = append([]byte(nil), lt.tail[len(lt.tail)-tailLimit:]...)
	}
	lt.buf = append(lt.buf, p...)
	// progress bars redraw with a bare \r, so it ends a line as well
	start := 0
	for {
		idx := bytes.IndexAny(lt.buf[start:], "\r\n")
		if idx < 0 {
			break
		}
		lt.emit(lt.buf[start : start+idx])
		start += idx + 1
	}
	n := copy(lt.buf, lt.buf[start:])
	lt.buf = lt.buf[:n]
	if cap(lt.buf) > 4*tailLimit {
		lt.buf = append([]byte(nil), lt.buf...)
	}
	if len(lt.buf) > tailLimit {
		lt.emit(lt.buf)
		lt.buf = lt.buf[:0]
	}
	return len(p), nil
}

func (lt *lineTail) emit(line []byte) {
	if len(line) > 0 {
		lt.log.Debug().Str("stream", lt.stream).Msg(string(line))
	}
}

// String returns the retained tail of the stream.
func (lt *lineTail) String() string {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return string(lt.tail)
}
