package logging

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	o := DefaultOptions()
	o.OutputPaths = []string{filepath.Join(t.TempDir(), "out.log")}
	o.JSONEncoding = true
	l, err := o.Build()
	require.Nil(t, err)
	l.Info("hello")
	_ = l.Sync()

	o.Level = "none"
	l, err = o.Build()
	require.Nil(t, err)
	require.NotNil(t, l)

	o.Level = "loud"
	_, err = o.Build()
	require.NotNil(t, err)
}

func TestAttachCobraFlags(t *testing.T) {
	o := DefaultOptions()
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	o.AttachCobraFlags(cmd)
	cmd.SetArgs([]string{"--log_output_level", "debug", "--log_as_json"})
	require.Nil(t, cmd.Execute())
	require.Equal(t, "debug", o.Level)
	require.True(t, o.JSONEncoding)
}
