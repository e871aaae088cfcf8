package notify

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"dundie-rewards/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP accepts one session and records the envelope and data.
type fakeSMTP struct {
	ln   net.Listener
	mu   sync.Mutex
	from string
	rcpt []string
	data string
	done chan struct{}
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeSMTP{ln: ln, done: make(chan struct{})}
	t.Cleanup(func() { ln.Close() })
	go s.serve()
	return s
}

func (s *fakeSMTP) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTP) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
	reply("220 localhost ESMTP")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		upper := strings.ToUpper(cmd)
		switch {
		case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(upper, "MAIL FROM:"):
			s.mu.Lock()
			s.from = strings.Trim(cmd[len("MAIL FROM:"):], "<> ")
			s.mu.Unlock()
			reply("250 OK")
		case strings.HasPrefix(upper, "RCPT TO:"):
			s.mu.Lock()
			s.rcpt = append(s.rcpt, strings.Trim(cmd[len("RCPT TO:"):], "<> "))
			s.mu.Unlock()
			reply("250 OK")
		case upper == "DATA":
			reply("354 go ahead")
			var data strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				data.WriteString(l)
			}
			s.mu.Lock()
			s.data = data.String()
			s.mu.Unlock()
			reply("250 queued")
		case upper == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func TestSMTPSenderDelivers(t *testing.T) {
	srv := startFakeSMTP(t)
	sender := New(config.SMTPConfig{Enabled: true, Host: "127.0.0.1", Port: srv.port(), Timeout: 2 * time.Second})
	require.IsType(t, &SMTPSender{}, sender)

	err := sender.Send(context.Background(), "admin@dundie.com", []string{"jim@co.com"}, "Your dundie password", "Your password is: abc123")
	require.NoError(t, err)

	select {
	case <-srv.done:
	case <-time.After(2 * time.Second):
		t.Fatal("smtp session did not finish")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, "admin@dundie.com", srv.from)
	assert.Equal(t, []string{"jim@co.com"}, srv.rcpt)
	assert.Contains(t, srv.data, "Subject: Your dundie password\r\n")
	assert.Contains(t, srv.data, "Your password is: abc123")
}

func TestSMTPSenderUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	sender := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: port, Timeout: time.Second})
	err = sender.Send(context.Background(), "admin@dundie.com", []string{"jim@co.com"}, "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:"+strconv.Itoa(port))
}

func TestSendRequiresRecipient(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: 25})
	assert.Error(t, sender.Send(context.Background(), "admin@dundie.com", nil, "s", "b"))
}

func TestDisabledSenderIsNop(t *testing.T) {
	sender := New(config.SMTPConfig{Enabled: false})
	assert.Equal(t, NopSender{}, sender)
	assert.NoError(t, sender.Send(context.Background(), "a@b.com", []string{"c@d.com"}, "s", "b"))
}

func TestMessageUsesCRLF(t *testing.T) {
	msg := string(message("a@b.com", []string{"c@d.com", "e@f.com"}, "hi", "line1\nline2"))
	assert.Contains(t, msg, "To: c@d.com, e@f.com\r\n")
	assert.True(t, strings.HasSuffix(msg, "line1\r\nline2\r\n"))
}
