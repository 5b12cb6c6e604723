// Package sink wraps the byte-stream destination the frame controller
// writes reassembled payload into. The core never seeks and never
// retries a short write — it only logs it.
package sink

import "io"

// Writer is the sink contract: sequential Write calls, no Seek.
// Satisfied directly by *os.File, a net.Conn, or any io.Writer.
type Writer = io.Writer
