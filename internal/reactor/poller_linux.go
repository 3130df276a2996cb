//go:build linux

package reactor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

const (
	readInterest  = unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLET
	writeInterest = readInterest | unix.EPOLLOUT
)

type epoll struct {
	fd     int
	wakeFD int
	buf    []unix.EpollEvent
}

func newPoller() (poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	wakeFD, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeFD)}
	if err := unix.EpollCtl(fd, unix.EPOLL_CTL_ADD, wakeFD, &ev); err != nil {
		_ = unix.Close(wakeFD)
		_ = unix.Close(fd)
		return nil, fmt.Errorf("epoll_ctl wakeup: %w", err)
	}

	return &epoll{fd: fd, wakeFD: wakeFD}, nil
}

func (e *epoll) add(fd int) error {
	ev := unix.EpollEvent{Events: readInterest, Fd: int32(fd)}
	return unix.EpollCtl(e.fd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (e *epoll) setWritable(fd int, on bool) error {
	ev := unix.EpollEvent{Events: readInterest, Fd: int32(fd)}
	if on {
		ev.Events = writeInterest
	}
	return unix.EpollCtl(e.fd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (e *epoll) remove(fd int) error {
	return unix.EpollCtl(e.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (e *epoll) wait(events []event) (int, error) {
	if len(e.buf) < len(events) {
		e.buf = make([]unix.EpollEvent, len(events))
	}

	n, err := unix.EpollWait(e.fd, e.buf[:len(events)], -1)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, err
	}

	for i := 0; i < n; i++ {
		raw := e.buf[i]
		fd := int(raw.Fd)
		if fd == e.wakeFD {
			e.drainWake()
			events[i] = event{fd: fd, wakeup: true}
			continue
		}
		events[i] = event{
			fd:       fd,
			readable: raw.Events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0,
			writable: raw.Events&unix.EPOLLOUT != 0,
			hangup:   raw.Events&(unix.EPOLLHUP|unix.EPOLLERR) != 0,
		}
	}
	return n, nil
}

func (e *epoll) wake() error {
	var one [8]byte
	binary.LittleEndian.PutUint64(one[:], 1)
	_, err := unix.Write(e.wakeFD, one[:])
	if errors.Is(err, unix.EAGAIN) {
		// counter is saturated, a wakeup is already pending
		return nil
	}
	return err
}

func (e *epoll) drainWake() {
	var buf [8]byte
	for {
		if _, err := unix.Read(e.wakeFD, buf[:]); err != nil {
			return
		}
	}
}

func (e *epoll) close() error {
	_ = unix.Close(e.wakeFD)
	return unix.Close(e.fd)
}

func listenTCP(addr string) (int, net.Addr, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return -1, nil, err
	}

	family := unix.AF_INET
	var sa unix.Sockaddr
	if ip4 := tcpAddr.IP.To4(); tcpAddr.IP == nil || ip4 != nil {
		sa4 := &unix.SockaddrInet4{Port: tcpAddr.Port}
		copy(sa4.Addr[:], ip4)
		sa = sa4
	} else {
		family = unix.AF_INET6
		sa6 := &unix.SockaddrInet6{Port: tcpAddr.Port}
		copy(sa6.Addr[:], tcpAddr.IP.To16())
		sa = sa6
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, nil, fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, nil, fmt.Errorf("setsockopt: %w", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, nil, fmt.Errorf("bind: %w", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		_ = unix.Close(fd)
		return -1, nil, fmt.Errorf("listen: %w", err)
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return -1, nil, fmt.Errorf("getsockname: %w", err)
	}
	return fd, toTCPAddr(bound), nil
}

func acceptConn(listenFD int) (int, string, error) {
	fd, sa, err := unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, "", err
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

	remote := "unknown"
	if a := toTCPAddr(sa); a != nil {
		remote = a.String()
	}
	return fd, remote, nil
}

func toTCPAddr(sa unix.Sockaddr) *net.TCPAddr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]).To16(), Port: a.Port}
	case *unix.SockaddrInet6:
		var zone string
		if a.ZoneId != 0 {
			zone = strconv.Itoa(int(a.ZoneId))
		}
		return &net.TCPAddr{IP: net.IP(a.Addr[:]), Port: a.Port, Zone: zone}
	default:
		return nil
	}
}

func sysRead(fd int, p []byte) (int, error)  { return unix.Read(fd, p) }
func sysWrite(fd int, p []byte) (int, error) { return unix.Write(fd, p) }
func sysClose(fd int) error                  { return unix.Close(fd) }

func isAgain(err error) bool       { return errors.Is(err, unix.EAGAIN) }
func isInterrupted(err error) bool { return errors.Is(err, unix.EINTR) }
