package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gammadia/hostpool/cli/log"
	"github.com/gammadia/hostpool/cluster"
	"github.com/gammadia/hostpool/remoteaccount"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Script is a sequence of operations replayed against a single cluster.
type Script struct {
	// NumNodes overrides the num-nodes flag when set
	NumNodes *int   `yaml:"num-nodes"`
	Steps    []Step `yaml:"steps"`
}

// Step holds exactly one operation.
type Step struct {
	Alloc     map[string]int `yaml:"alloc,omitempty"`
	Free      []int          `yaml:"free,omitempty"`
	Available string         `yaml:"available,omitempty"`
}

func (s Step) action() (string, error) {
	actions := lo.Without([]string{
		lo.Ternary(s.Alloc != nil, "alloc", ""),
		lo.Ternary(s.Free != nil, "free", ""),
		lo.Ternary(s.Available != "", "available", ""),
	}, "")
	if len(actions) != 1 {
		return "", fmt.Errorf("step must hold exactly one of alloc, free or available, got %d", len(actions))
	}
	return actions[0], nil
}

type StepResult struct {
	Step      int    `json:"step" yaml:"step"`
	Action    string `json:"action" yaml:"action"`
	Slots     []int  `json:"slots,omitempty" yaml:"slots,omitempty"`
	Available string `json:"available" yaml:"available"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

func ParseScript(r io.Reader) (Script, error) {
	var script Script
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&script); err != nil {
		return script, fmt.Errorf("failed to parse script: %w", err)
	}

	for i, step := range script.Steps {
		if _, err := step.action(); err != nil {
			return script, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return script, nil
}

type replayCluster interface {
	cluster.Cluster
	Name() string
}

// replay runs every step of the script. Failing steps are reported in their
// result and do not stop the replay.
func replay(c replayCluster, script Script) []StepResult {
	// Every slot ever issued, so that freeing twice hits the cluster's own checks
	issued := map[int]*cluster.Slot{}
	results := make([]StepResult, 0, len(script.Steps))

	for i, step := range script.Steps {
		action, _ := step.action()
		result := StepResult{Step: i + 1, Action: action}

		var err error
		switch action {
		case "alloc":
			var spec cluster.NodeSpec
			if spec, err = nodeSpec(step.Alloc); err != nil {
				break
			}
			var slots []*cluster.Slot
			if slots, err = c.Alloc(spec); err != nil {
				break
			}
			for _, slot := range slots {
				issued[slot.ID] = slot
				result.Slots = append(result.Slots, slot.ID)
			}

		case "free":
			slots := lo.Map(step.Free, func(id int, _ int) *cluster.Slot {
				if slot, ok := issued[id]; ok {
					return slot
				}
				return &cluster.Slot{ID: id, Cluster: c.Name()}
			})
			err = c.Free(slots)
			result.Slots = step.Free

		case "available":
			var platform remoteaccount.OS
			if platform, err = remoteaccount.ParseOS(step.Available); err == nil {
				_, err = c.NumAvailable(platform)
			}
		}

		if err != nil {
			result.Error = err.Error()
			log.Debug("Replay step failed", "step", result.Step, "action", action, "error", err)
		}
		result.Available = formatCount(lo.Must(c.NumAvailable(remoteaccount.Linux)))
		results = append(results, result)
	}

	return results
}

func writeResults(w io.Writer, format string, results []StepResult) error {
	if format != outputText {
		return encode(w, format, results)
	}

	for _, result := range results {
		status := color.GreenString("ok")
		if result.Error != "" {
			status = color.HiRedString(result.Error)
		}
		slots := ""
		if len(result.Slots) > 0 {
			slots = fmt.Sprint(result.Slots)
		}
		if _, err := fmt.Fprintf(w, "%3d  %-9s %-20s available=%-9s %s\n", result.Step, result.Action, slots, result.Available, status); err != nil {
			return err
		}
	}
	return nil
}

var replayCmd = &cobra.Command{
	Use:   "replay SCRIPT",
	Short: "Replay a script of allocations and releases against a cluster",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) (err error) {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		script, err := ParseScript(file)
		if err != nil {
			return err
		}

		c, err := createCluster(script.NumNodes)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, c.Close())
		}()

		results := replay(c, script)
		if err := writeResults(cmd.OutOrStdout(), lo.Must(cmd.Flags().GetString("output")), results); err != nil {
			return err
		}

		failed := lo.CountBy(results, func(result StepResult) bool { return result.Error != "" })
		if failed > 0 {
			log.Warn("Some replay steps failed", "failed", failed, "steps", len(results))
			if lo.Must(cmd.Flags().GetBool("strict")) {
				return fmt.Errorf("%d of %d steps failed", failed, len(results))
			}
		}
		return nil
	},
}

func init() {
	replayCmd.Flags().StringP("output", "o", outputText, "output format (text, json, yaml)")
	replayCmd.Flags().Bool("strict", false, "exit with an error when a step fails")
}
