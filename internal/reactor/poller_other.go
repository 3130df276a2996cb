//go:build !linux

package reactor

import "net"

func newPoller() (poller, error) { return nil, ErrUnsupportedPlatform }

func listenTCP(string) (int, net.Addr, error) { return -1, nil, ErrUnsupportedPlatform }

func acceptConn(int) (int, string, error) { return -1, "", ErrUnsupportedPlatform }

func sysRead(int, []byte) (int, error)  { return 0, ErrUnsupportedPlatform }
func sysWrite(int, []byte) (int, error) { return 0, ErrUnsupportedPlatform }
func sysClose(int) error                { return ErrUnsupportedPlatform }

func isAgain(error) bool       { return false }
func isInterrupted(error) bool { return false }
