package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeText(t *testing.T) {
	tests := []struct {
		pending  int
		expected string
	}{
		{-1, ""},
		{0, ""},
		{1, "1"},
		{45, "45"},
		{99, "99"},
		{100, "99+"},
		{150, "99+"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, BadgeText(tt.pending))
		})
	}
}

func TestPendingBadge(t *testing.T) {
	assert.Equal(t, Badge{}, PendingBadge(0))
	assert.True(t, PendingBadge(0).Cleared())
	assert.Equal(t, Badge{Text: "45", Color: BadgeColor}, PendingBadge(45))
	assert.LessOrEqual(t, len(PendingBadge(1000).Text), 4)
}

func TestBadgeRender(t *testing.T) {
	assert.Empty(t, Badge{}.Render())
	assert.Contains(t, PendingBadge(7).Render(), "7")
}

type memKV struct {
	m      map[string]string
	putErr error
}

func (k *memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Put(_ context.Context, key, value string) error {
	if k.putErr != nil {
		return k.putErr
	}
	if k.m == nil {
		k.m = map[string]string{}
	}
	k.m[key] = value
	return nil
}

func TestStateBadge_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sb := NewStateBadge(&memKV{})

	b, err := sb.Badge(ctx)
	require.NoError(t, err)
	assert.True(t, b.Cleared())

	require.NoError(t, sb.SetBadge(ctx, PendingBadge(150)))
	b, err = sb.Badge(ctx)
	require.NoError(t, err)
	assert.Equal(t, "99+", b.Text)
	assert.Equal(t, BadgeColor, b.Color)
}

func TestStateBadge_Corrupt(t *testing.T) {
	sb := NewStateBadge(&memKV{m: map[string]string{badgeStateKey: "{"}})
	_, err := sb.Badge(context.Background())
	assert.Error(t, err)
}

func TestTerminalBadge_PrintsOnlyChanges(t *testing.T) {
	var buf bytes.Buffer
	tb := &TerminalBadge{Out: &buf}
	ctx := context.Background()

	require.NoError(t, tb.SetBadge(ctx, PendingBadge(3)))
	require.NoError(t, tb.SetBadge(ctx, PendingBadge(3)))
	require.NoError(t, tb.SetBadge(ctx, PendingBadge(0)))

	out := buf.String()
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("Badge:")))
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "(cleared)")
}

func TestBadgeSinks_FanOut(t *testing.T) {
	ok := &memKV{}
	failing := &memKV{putErr: errors.New("disk full")}

	err := BadgeSinks(NewStateBadge(failing), nil, NewStateBadge(ok)).SetBadge(context.Background(), PendingBadge(2))
	require.Error(t, err)
	assert.Contains(t, ok.m[badgeStateKey], `"text":"2"`)
}
