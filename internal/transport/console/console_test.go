package console

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eino_chat_bridge/internal/transport"
)

func TestParse(t *testing.T) {
	tr := New(strings.NewReader(""), &bytes.Buffer{})

	msg, err := tr.parse("asha: hello there: friend")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "asha", msg.From())
	assert.Equal(t, "hello there: friend", msg.Body())
	assert.False(t, msg.group)

	msg, err = tr.parse("#group ravi: hi all")
	require.NoError(t, err)
	assert.True(t, msg.group)
	assert.Equal(t, "ravi", msg.From())

	msg, err = tr.parse("   ")
	assert.NoError(t, err)
	assert.Nil(t, msg)

	for _, bad := range []string{"no separator", ": no user", "user:   "} {
		_, err := tr.parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestRunDeliversMessages(t *testing.T) {
	out := &bytes.Buffer{}
	tr := New(strings.NewReader("asha: hi\nbroken line\n#group ravi: hey\n"), out)

	var (
		mu   sync.Mutex
		msgs []transport.Message
	)
	err := tr.Run(context.Background(), func(ctx context.Context, msg transport.Message) {
		mu.Lock()
		msgs = append(msgs, msg)
		mu.Unlock()

		c, err := msg.Chat(ctx)
		require.NoError(t, err)
		if !c.IsGroup() {
			require.NoError(t, c.SendTyping(ctx))
			require.NoError(t, msg.Reply(ctx, "welcome"))
		}
	})
	require.NoError(t, err)

	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].ID())
	assert.Equal(t, "2", msgs[1].ID())

	name, err := msgs[0].SenderName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "asha", name)

	assert.Equal(t, "[to asha] typing...\n[to asha] welcome\n", out.String())
}
