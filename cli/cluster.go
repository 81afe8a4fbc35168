package main

import (
	"encoding/json"
	"fmt"

	"github.com/gammadia/hostpool/cli/flags"
	"github.com/gammadia/hostpool/cli/log"
	"github.com/gammadia/hostpool/cluster"
	"github.com/gammadia/hostpool/cluster/localhost"
	"github.com/gammadia/hostpool/remoteaccount"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// createCluster builds a cluster from the command line configuration. A non-nil
// numNodes takes precedence over the num-nodes flag.
func createCluster(numNodes *int) (*localhost.Cluster, error) {
	config := localhost.Config{
		Logger:       log.Base.With("component", "cluster"),
		Hostname:     viper.GetString(flags.Hostname),
		Port:         viper.GetInt(flags.SSHPort),
		User:         viper.GetString(flags.SSHUser),
		IdentityFile: viper.GetString(flags.SSHIdentityFile),
	}

	if numNodes == nil && viper.GetInt(flags.NumNodes) != 0 {
		numNodes = lo.ToPtr(viper.GetInt(flags.NumNodes))
	}
	config.NumNodes = numNodes

	log.Debug("Cluster config", "config", string(lo.Must(json.Marshal(config))))

	c, err := localhost.New(config)
	if err != nil {
		return nil, fmt.Errorf("unable to create cluster: %w", err)
	}
	return c, nil
}

func formatCount(n int) string {
	if n == cluster.Unlimited {
		return "unlimited"
	}
	return fmt.Sprint(n)
}

// nodeSpec builds a node spec from counts keyed by operating system name.
func nodeSpec(counts map[string]int) (cluster.NodeSpec, error) {
	spec := cluster.NodeSpec{}
	for name, count := range counts {
		os, err := remoteaccount.ParseOS(name)
		if err != nil {
			return nil, err
		}
		spec[os] += count
	}
	return spec, nil
}
