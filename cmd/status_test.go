package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/blackroad/cli/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type FakeHealthService struct {
	HealthFunc func(ctx context.Context) (*api.Health, error)
	URL        string
}

func (f *FakeHealthService) Health(ctx context.Context) (*api.Health, error) {
	return f.HealthFunc(ctx)
}

func (f *FakeHealthService) BaseURL() string { return f.URL }

func TestStatus_Healthy(t *testing.T) {
	setupStdoutCapture(t)
	fake := &FakeHealthService{
		URL: "https://api.blackroad.io/v1",
		HealthFunc: func(context.Context) (*api.Health, error) {
			return &api.Health{Status: "healthy", Version: "1.3.2"}, nil
		},
	}

	require.NoError(t, StatusCmd{health: fake}.Run(context.Background(), StatusInput{}))
	out := outBuf.String()
	assert.Contains(t, out, "BlackRoad API: Healthy")
	assert.Contains(t, out, "1.3.2")
	assert.Contains(t, out, "https://api.blackroad.io/v1")
}

func TestStatus_DegradedIsAnError(t *testing.T) {
	setupStdoutCapture(t)
	fake := &FakeHealthService{
		HealthFunc: func(context.Context) (*api.Health, error) {
			return &api.Health{Status: "degraded"}, nil
		},
	}

	err := StatusCmd{health: fake}.Run(context.Background(), StatusInput{})
	require.Error(t, err)
	assert.Contains(t, outBuf.String(), "Degraded")
}

func TestStatus_Unreachable(t *testing.T) {
	setupStdoutCapture(t)
	fake := &FakeHealthService{
		URL: "https://api.blackroad.io/v1",
		HealthFunc: func(context.Context) (*api.Health, error) {
			return nil, &api.NetworkError{Err: errors.New("no such host")}
		},
	}

	err := StatusCmd{health: fake}.Run(context.Background(), StatusInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such host")
	assert.Contains(t, outBuf.String(), "Could not reach the BlackRoad API")
}

func TestStatus_JSON(t *testing.T) {
	setupStdoutCapture(t)
	fake := &FakeHealthService{
		URL: "https://api.blackroad.io/v1",
		HealthFunc: func(context.Context) (*api.Health, error) {
			return &api.Health{Status: "healthy", Version: "1.3.2"}, nil
		},
	}

	out := captureStdout(t, func() {
		require.NoError(t, StatusCmd{health: fake}.Run(context.Background(), StatusInput{Output: "json"}))
	})
	var got statusView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, statusView{Status: "healthy", Version: "1.3.2", APIURL: "https://api.blackroad.io/v1"}, got)
}

func TestGetStatusDisplay_Unknown(t *testing.T) {
	label, _ := getStatusDisplay("on-fire")
	assert.Equal(t, "Unknown", label)
}
