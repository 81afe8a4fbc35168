package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/gammadia/hostpool/cluster"
	"github.com/gammadia/hostpool/cluster/localhost"
	"github.com/gammadia/hostpool/remoteaccount"
	"github.com/samber/lo"
)

func main() {
	config := localhost.DefaultConfig()
	config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if n, err := strconv.Atoi(os.Getenv("NUM_NODES")); err == nil {
		config.NumNodes = lo.ToPtr(n)
	}

	c, err := localhost.New(config)
	if err != nil {
		fmt.Println(fmt.Errorf("unable to create cluster: %w", err).Error())
		os.Exit(1)
	}

	events, unsubscribe := c.Subscribe()
	defer unsubscribe()
	go func() {
		for event := range events {
			fmt.Printf("event: %#v\n", event)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		_ = c.Close()
		os.Exit(1)
	}()

	slots, err := c.Alloc(cluster.NodeSpec{remoteaccount.Linux: 3})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	for _, slot := range slots {
		fmt.Print(slot.Account.SSHConfig())
	}

	if _, err := c.Alloc(cluster.NodeSpec{remoteaccount.Windows: 1}); err != nil {
		fmt.Println("expected failure:", err)
	}

	fmt.Println("free:", c.Free(slots))
	fmt.Println("free again:", c.FreeSingle(slots[0]))
	fmt.Println("close:", c.Close())
}
