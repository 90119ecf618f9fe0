package ws

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"sync"
)

// MaxFrameSize bounds an inflated push frame. A channel event carries one
// message record, so anything larger is a corrupt or hostile frame.
const MaxFrameSize = 4 << 20

var ErrFrameTooLarge = errors.New("inflated frame exceeds limit")

// Frames are small and frequent, so deflate favors speed and writers are
// reused between frames.
var writers = sync.Pool{
	New: func() any {
		w, _ := zlib.NewWriterLevel(nil, zlib.BestSpeed)
		return w
	},
}

// Compress deflates one outgoing frame.
func Compress(frame []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := writers.Get().(*zlib.Writer)
	defer writers.Put(w)
	w.Reset(&buf)

	if _, err := w.Write(frame); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress inflates one incoming frame, refusing frames that inflate past
// MaxFrameSize.
func Decompress(frame []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(frame))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, MaxFrameSize+1))
	if err != nil {
		return nil, err
	}

	if len(out) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	return out, nil
}
