package cmd

import (
	"errors"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

type recordingCloser struct {
	closed int
	err    error
}

func (c *recordingCloser) Close() error {
	c.closed++
	return c.err
}

func TestExecuteClosesLogFile(t *testing.T) {
	errRun := errors.New("run failed")
	errClose := errors.New("close failed")

	tests := []struct {
		name     string
		runErr   error
		closeErr error
		wantErr  error
	}{
		{name: "success", runErr: nil},
		{name: "command error", runErr: errRun, wantErr: errRun},
		{name: "close error", closeErr: errClose, wantErr: errClose},
		{name: "command error wins", runErr: errRun, closeErr: errClose, wantErr: errRun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := logCloser
			t.Cleanup(func() { logCloser = saved })

			closer := &recordingCloser{err: tt.closeErr}
			root := &cobra.Command{
				Use:           "test",
				SilenceErrors: true,
				SilenceUsage:  true,
				RunE: func(cmd *cobra.Command, args []string) error {
					logCloser = closer
					return tt.runErr
				},
			}
			root.SetArgs([]string{})
			root.SetOut(io.Discard)

			err := execute(root)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, 1, closer.closed)
			assert.Nil(t, logCloser)
		})
	}
}
