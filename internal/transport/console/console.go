// Package console reads chat messages from a line stream, for local runs
// without a bot account. Each line is "user: text"; a leading "#" marks a
// group message ("#group user: text").
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"eino_chat_bridge/internal/transport"
	"eino_chat_bridge/src/logger"
)

// Transport reads messages from in and writes replies to out
type Transport struct {
	in  io.Reader
	out io.Writer
	mu  sync.Mutex
	seq atomic.Int64
}

// New creates a console transport
func New(in io.Reader, out io.Writer) *Transport {
	return &Transport{in: in, out: out}
}

func (t *Transport) Name() string {
	return "console"
}

// Run hands each parsed line to handle until the input ends or ctx is done
func (t *Transport) Run(ctx context.Context, handle transport.Handler) error {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					if err != nil {
						return fmt.Errorf("read console input: %w", err)
					}
				default:
				}
				return nil
			}
			msg, err := t.parse(line)
			if err != nil {
				logger.Warn().Err(err).Str("line", line).Msg("Ignoring console line")
				continue
			}
			if msg != nil {
				handle(ctx, msg)
			}
		}
	}
}

// parse turns a line into a message; blank lines yield nil
func (t *Transport) parse(line string) (*message, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	group := false
	if strings.HasPrefix(line, "#group ") {
		group = true
		line = strings.TrimSpace(strings.TrimPrefix(line, "#group "))
	}

	user, body, ok := strings.Cut(line, ":")
	user, body = strings.TrimSpace(user), strings.TrimSpace(body)
	if !ok || user == "" || body == "" {
		return nil, fmt.Errorf("expected \"user: text\"")
	}

	return &message{
		t:     t,
		id:    strconv.FormatInt(t.seq.Add(1), 10),
		from:  user,
		body:  body,
		group: group,
	}, nil
}

func (t *Transport) write(format string, args ...any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.out, format, args...)
	return err
}

type message struct {
	t     *Transport
	id    string
	from  string
	body  string
	group bool
}

func (m *message) ID() string   { return m.id }
func (m *message) From() string { return m.from }
func (m *message) Body() string { return m.body }

func (m *message) Chat(context.Context) (transport.Chat, error) {
	return &chat{m: m}, nil
}

func (m *message) SenderName(context.Context) (string, error) {
	return m.from, nil
}

func (m *message) Reply(_ context.Context, text string) error {
	return m.t.write("[to %s] %s\n", m.from, text)
}

type chat struct {
	m *message
}

func (c *chat) IsGroup() bool { return c.m.group }

func (c *chat) SendTyping(context.Context) error {
	return c.m.t.write("[to %s] typing...\n", c.m.from)
}

func (c *chat) ClearTyping(context.Context) error {
	return nil
}
