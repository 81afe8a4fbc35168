package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/fatih/color"
	"github.com/gammadia/hostpool/cluster"
	"github.com/gammadia/hostpool/remoteaccount"
	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type slotView struct {
	ID      int                     `json:"id" yaml:"id"`
	Cluster string                  `json:"cluster" yaml:"cluster"`
	Account string                  `json:"account" yaml:"account"`
	OS      remoteaccount.OS        `json:"os" yaml:"os"`
	SSH     remoteaccount.SSHConfig `json:"ssh" yaml:"ssh"`
	Command string                  `json:"command" yaml:"command"`
}

func viewSlot(slot *cluster.Slot) slotView {
	config := slot.Account.SSHConfig()
	return slotView{
		ID:      slot.ID,
		Cluster: slot.Cluster,
		Account: slot.Account.Name(),
		OS:      slot.Account.OS(),
		SSH:     config,
		Command: config.CommandLine(),
	}
}

// encode writes v as json or yaml.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case outputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown output format '%s'", format)
	}
}

func writeSlots(w io.Writer, format, tmpl string, slots []*cluster.Slot) error {
	views := lo.Map(slots, func(slot *cluster.Slot, _ int) slotView { return viewSlot(slot) })

	if tmpl != "" {
		t, err := template.New("slot").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
		if err != nil {
			return fmt.Errorf("invalid template: %w", err)
		}
		for _, view := range views {
			if err := t.Execute(w, view); err != nil {
				return fmt.Errorf("failed to render slot %d: %w", view.ID, err)
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		return nil
	}

	if format != outputText {
		return encode(w, format, views)
	}

	for _, view := range views {
		if _, err := fmt.Fprintf(w, "%-6d %-16s %s\n", view.ID, color.HiCyanString(view.Account), view.Command); err != nil {
			return err
		}
	}
	return nil
}
