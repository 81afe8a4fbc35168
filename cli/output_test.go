package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/gammadia/hostpool/cluster"
	"github.com/gammadia/hostpool/remoteaccount"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testSlots(t *testing.T, n int) []*cluster.Slot {
	c := newReplayCluster(t, lo.ToPtr(n))
	slots, err := c.Alloc(cluster.NodeSpec{remoteaccount.Linux: n})
	require.NoError(t, err)
	return slots
}

func TestWriteSlotsText(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	require.NoError(t, writeSlots(&buf, outputText, "", testSlots(t, 2)))

	assert.Equal(t,
		"0      localhost0       ssh localhost -p 22 -o BatchMode=yes\n"+
			"1      localhost1       ssh localhost -p 22 -o BatchMode=yes\n",
		buf.String(),
	)
}

func TestWriteSlotsJSON(t *testing.T) {
	slots := testSlots(t, 1)

	var buf bytes.Buffer
	require.NoError(t, writeSlots(&buf, outputJSON, "", slots))

	var views []slotView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &views))
	assert.Equal(t, []slotView{{
		ID:      0,
		Cluster: slots[0].Cluster,
		Account: "localhost0",
		OS:      remoteaccount.Linux,
		SSH:     remoteaccount.SSHConfig{Host: "localhost0", Hostname: "localhost", Port: 22},
		Command: "ssh localhost -p 22 -o BatchMode=yes",
	}}, views)
}

func TestWriteSlotsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSlots(&buf, outputYAML, "", testSlots(t, 2)))

	var views []slotView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &views))
	assert.Equal(t, []int{0, 1}, lo.Map(views, func(v slotView, _ int) int { return v.ID }))
	assert.Equal(t, "localhost1", views[1].SSH.Host)
}

func TestWriteSlotsTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSlots(&buf, outputText, `{{ .Account | upper }} {{ .SSH.Port }}`, testSlots(t, 2)))

	assert.Equal(t, "LOCALHOST0 22\nLOCALHOST1 22\n", buf.String())
}

func TestWriteSlotsErrors(t *testing.T) {
	slots := testSlots(t, 1)

	assert.EqualError(t, writeSlots(io.Discard, "xml", "", slots), "unknown output format 'xml'")
	assert.ErrorContains(t, writeSlots(io.Discard, outputText, "{{ .Nope", slots), "invalid template")
	assert.ErrorContains(t, writeSlots(io.Discard, outputText, "{{ .Nope }}", slots), "failed to render slot 0")
}
