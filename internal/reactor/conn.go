package reactor

import "bytes"

// Conn is one accepted client. Its methods must only be called from the loop
// goroutine.
type Conn struct {
	loop   *Loop
	fd     int
	id     uint64
	remote string

	rbuf       []byte
	wbuf       []byte
	discarding bool // skipping the rest of an over-long line
	watchOut   bool // EPOLLOUT registered
	draining   bool // close once wbuf is empty
	closed     bool

	// Data is free for the handler to attach per-connection state
	Data interface{}
}

// ID returns the connection id, unique for the lifetime of the loop
func (c *Conn) ID() uint64 { return c.id }

// RemoteAddr returns the peer address
func (c *Conn) RemoteAddr() string { return c.remote }

// Closed reports whether Close has run
func (c *Conn) Closed() bool { return c.closed }

// Pending returns the number of bytes waiting to be written
func (c *Conn) Pending() int { return len(c.wbuf) }

// Write queues p and tries to flush it immediately. If the bytes do not fit
// in the write buffer nothing is queued and ErrWriteBufferFull is returned.
func (c *Conn) Write(p []byte) error {
	if c.closed || c.draining {
		return ErrClosed
	}
	if len(c.wbuf)+len(p) > c.loop.opts.WriteBuffer {
		return ErrWriteBufferFull
	}

	c.wbuf = append(c.wbuf, p...)
	c.flush()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// CloseAfterFlush stops reading and closes the connection once every queued
// byte has been written
func (c *Conn) CloseAfterFlush() {
	if c.closed || c.draining {
		return
	}
	c.draining = true
	if len(c.wbuf) == 0 {
		c.Close()
	}
}

// Close deregisters the connection, tells the handler, then closes the
// socket. Calling it again is a no-op.
func (c *Conn) Close() {
	if c.closed {
		return
	}
	c.closed = true

	l := c.loop
	if err := l.poller.remove(c.fd); err != nil {
		l.log.Debug("Failed to deregister connection %d: %v", c.id, err)
	}
	delete(l.conns, c.fd)

	l.handler.OnClose(c)

	if err := sysClose(c.fd); err != nil {
		l.log.Debug("Failed to close connection %d: %v", c.id, err)
	}
	c.rbuf, c.wbuf = nil, nil
	l.log.Debug("Closed connection %d (%s)", c.id, c.remote)
}

func (c *Conn) handleReadable() {
	for !c.closed && !c.draining {
		if len(c.rbuf) == cap(c.rbuf) {
			if !c.discarding {
				c.loop.handler.OnOverflow(c)
				if c.closed || c.draining {
					return
				}
			}
			c.discarding = true
			c.rbuf = c.rbuf[:0]
		}

		n, err := sysRead(c.fd, c.rbuf[len(c.rbuf):cap(c.rbuf)])
		if err != nil {
			if isAgain(err) {
				return
			}
			if isInterrupted(err) {
				continue
			}
			c.loop.log.Debug("Read from connection %d failed: %v", c.id, err)
			c.Close()
			return
		}
		if n == 0 {
			c.Close()
			return
		}

		c.rbuf = c.rbuf[:len(c.rbuf)+n]
		c.dispatch()
	}
}

// dispatch hands every complete line to the handler and keeps the partial tail
func (c *Conn) dispatch() {
	start := 0
	if c.discarding {
		i := bytes.IndexByte(c.rbuf, '\n')
		if i < 0 {
			c.rbuf = c.rbuf[:0]
			return
		}
		c.discarding = false
		start = i + 1
	}

	for !c.closed && !c.draining {
		i := bytes.IndexByte(c.rbuf[start:], '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSuffix(c.rbuf[start:start+i], []byte{'\r'})
		start += i + 1
		c.loop.handler.OnLine(c, string(line))
	}

	if c.closed {
		return
	}
	n := copy(c.rbuf, c.rbuf[start:])
	c.rbuf = c.rbuf[:n]
}

func (c *Conn) flush() {
	for len(c.wbuf) > 0 {
		n, err := sysWrite(c.fd, c.wbuf)
		if err != nil {
			if isAgain(err) {
				c.watchWritable(true)
				return
			}
			if isInterrupted(err) {
				continue
			}
			c.loop.log.Debug("Write to connection %d failed: %v", c.id, err)
			c.Close()
			return
		}
		rest := copy(c.wbuf, c.wbuf[n:])
		c.wbuf = c.wbuf[:rest]
	}

	c.watchWritable(false)
	if c.draining {
		c.Close()
	}
}

func (c *Conn) watchWritable(on bool) {
	if c.watchOut == on || c.closed {
		return
	}
	if err := c.loop.poller.setWritable(c.fd, on); err != nil {
		c.loop.log.Error("Failed to update interest for connection %d: %v", c.id, err)
		c.Close()
		return
	}
	c.watchOut = on
}
