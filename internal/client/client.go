// Package client handles the TCP client and its console
package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"ship-battle/internal/network"
	"ship-battle/pkg/logger"
)

// Client is a thin line client: it forwards typed commands and prints every
// server line as it arrives
type Client struct {
	serverAddr string
	conn       net.Conn
	display    *Display
	input      *InputHandler
	logger     *logger.Logger

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once

	// ByeTimeout bounds how long QUIT waits for the server to close
	ByeTimeout time.Duration
}

// NewClient creates a client reading commands from in and printing to out
func NewClient(serverAddr string, in io.Reader, out io.Writer) *Client {
	display := NewDisplay(out)
	return &Client{
		serverAddr: serverAddr,
		display:    display,
		input:      NewInputHandler(in, display),
		logger:     logger.Client,
		done:       make(chan struct{}),
		ByeTimeout: 5 * time.Second,
	}
}

// SetLogger replaces the client logger
func (c *Client) SetLogger(l *logger.Logger) {
	c.logger = l
}

// Start connects and runs until the user quits, the input ends or the server
// closes the connection
func (c *Client) Start() error {
	c.display.PrintBanner()

	if err := c.connectToServer(); err != nil {
		c.display.PrintError(fmt.Sprintf("Failed to connect to server: %v", err))
		return err
	}
	defer c.Close()

	go c.messageHandler()

	return c.runMainLoop()
}

func (c *Client) connectToServer() error {
	c.display.PrintInfo("Connecting to server...")

	conn, err := net.DialTimeout("tcp", c.serverAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn

	c.display.PrintServerStatus("Connected to " + c.serverAddr)
	c.logger.Info("Connected to server at %s", c.serverAddr)
	return nil
}

func (c *Client) runMainLoop() error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for {
			line, err := c.input.ReadCommand()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-c.done:
				return
			}
		}
	}()

	for {
		select {
		case <-c.done:
			return nil

		case line, ok := <-lines:
			if !ok {
				err := <-readErr
				if errors.Is(err, io.EOF) {
					return c.quit()
				}
				return err
			}

			if cmd, local := isLocal(line); local {
				if cmd == "HELP" {
					c.display.PrintHelp()
					continue
				}
				return c.quit()
			}

			if err := c.send(line); err != nil {
				c.display.PrintError(fmt.Sprintf("Failed to send: %v", err))
				return err
			}
		}
	}
}

// quit says BYE and waits for the server to hang up
func (c *Client) quit() error {
	if err := c.send("BYE"); err != nil {
		return nil
	}

	select {
	case <-c.done:
	case <-time.After(c.ByeTimeout):
		c.logger.Warn("Server did not close the connection after BYE")
	}
	return nil
}

func (c *Client) send(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.logger.Debug("Sending: %s", line)
	_, err := io.WriteString(c.conn, line+network.Terminator)
	return err
}

// messageHandler prints server lines until the connection closes
func (c *Client) messageHandler() {
	defer close(c.done)

	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			c.display.PrintResponse(line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.logger.Error("Read error: %v", err)
			}
			c.display.PrintServerStatus("Disconnected")
			return
		}
	}
}

// Close closes the connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}
