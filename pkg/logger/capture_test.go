package logger_test

import (
	"bytes"
	"io"
	"os"
)

// captureStdOut swaps os.Stdout for a pipe while fn runs. Init must be
// called inside fn because handlers bind os.Stdout at construction.
func captureStdOut(fn func()) string {
	orig := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() {
		os.Stdout = orig
	}()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	_ = r.Close()
	return buf.String()
}
