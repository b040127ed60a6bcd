package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/internal/output"
)

var showSensorsWait time.Duration

var showSensorsCmd = &cobra.Command{
	Use:   "show-sensors",
	Short: "Subscribe briefly to every known sensor and print the readings collected",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		entries := b.Catalog().Entries()

		var mu sync.Mutex
		readings := make(map[uint32]any, len(entries))

		ctx, cancel := context.WithTimeout(cmd.Context(), showSensorsWait)
		defer cancel()

		for _, e := range entries {
			pdid := e.PDID
			if err := b.Subscribe(ctx, pdid, e.Type, func(_ uint32, value any) {
				mu.Lock()
				readings[pdid] = value
				mu.Unlock()
			}, true); err != nil {
				fmt.Printf("subscribe pdid %d: %v\n", pdid, err)
			}
		}

		<-ctx.Done()

		rows := make([][]string, 0, len(entries))
		mu.Lock()
		for _, e := range entries {
			v, ok := readings[e.PDID]
			val := "-"
			if ok {
				val = fmt.Sprintf("%v", v)
			}
			rows = append(rows, []string{strconv.FormatUint(uint64(e.PDID), 10), e.Name, val, e.Unit})
		}
		mu.Unlock()

		output.PrintTable(cmd.OutOrStdout(), []string{"PDID", "Name", "Value", "Unit"}, rows)
		return nil
	},
}

func init() {
	showSensorsCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
	showSensorsCmd.Flags().DurationVar(&showSensorsWait, "wait", 3*time.Second, "how long to collect readings before printing")
}
